package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-board/internal/api/dto"
	"github.com/spec-kit/feedback-board/internal/auth"
	"github.com/spec-kit/feedback-board/internal/service"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// CommentsHandler manages standalone comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: commentService}
}

// List GET /api/comments. Admin moderation view.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	comments, err := h.comments.List(c.Context())
	if err != nil {
		return err
	}
	return respondList(c, int64(len(comments)), comments)
}

// Get GET /api/comments/:id. Public.
func (h *CommentsHandler) Get(c *fiber.Ctx) error {
	comment, err := h.comments.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, comment)
}

// Update PUT /api/comments/:id. Owner or admin.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	comment, err := h.comments.Update(c.Context(), caller, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, comment)
}

// Delete DELETE /api/comments/:id. Owner or admin.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.comments.Delete(c.Context(), caller, c.Params("id")); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, fiber.Map{})
}
