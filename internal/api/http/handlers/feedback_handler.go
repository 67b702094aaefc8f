package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-board/internal/api/dto"
	"github.com/spec-kit/feedback-board/internal/auth"
	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/query"
	"github.com/spec-kit/feedback-board/internal/service"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// FeedbackHandler manages feedback endpoints.
type FeedbackHandler struct {
	feedback *service.FeedbackService
	comments *service.CommentService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService, commentService *service.CommentService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedbackService, comments: commentService}
}

// List GET /api/feedback. Public; supports filter/sort/select/search and
// pagination via query parameters.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	listing, err := query.Translate(c.Queries())
	if err != nil {
		return err
	}
	result, err := h.feedback.List(c.Context(), listing)
	if err != nil {
		return err
	}
	pagination := dto.BuildPagination(result.Page, result.Limit, result.Total)
	return respondPage(c, result.Total, pagination, result.Items)
}

// ListMine GET /api/feedback/my.
func (h *FeedbackHandler) ListMine(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	items, err := h.feedback.ListMine(c.Context(), caller)
	if err != nil {
		return err
	}
	return respondList(c, int64(len(items)), items)
}

// Get GET /api/feedback/:id. Public.
func (h *FeedbackHandler) Get(c *fiber.Ctx) error {
	view, err := h.feedback.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, view)
}

// Create POST /api/feedback.
func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Title == "" || req.Description == "" || req.Category == "" {
		return apperrors.NewValidationError("title, description and category are required")
	}

	input := service.FeedbackCreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.Category,
		Status:      req.Status,
		Image:       imageFromRef(req.Image),
	}
	feedback, err := h.feedback.Create(c.Context(), caller, input)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, feedback)
}

// Update PUT /api/feedback/:id. Owner or admin.
func (h *FeedbackHandler) Update(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	input := service.FeedbackUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.Category,
		Status:      req.Status,
		Image:       imageFromRef(req.Image),
	}
	feedback, err := h.feedback.Update(c.Context(), caller, c.Params("id"), input)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, feedback)
}

// Delete DELETE /api/feedback/:id. Owner or admin; hosted image cleanup
// is best-effort.
func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.feedback.Delete(c.Context(), caller, c.Params("id")); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, fiber.Map{})
}

// Upvote PUT /api/feedback/:id/upvote. Once per user.
func (h *FeedbackHandler) Upvote(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	feedback, err := h.feedback.Upvote(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, feedback)
}

// ListComments GET /api/feedback/:id/comments. Public.
func (h *FeedbackHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.comments.ListForFeedback(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondList(c, int64(len(comments)), comments)
}

// AddComment POST /api/feedback/:id/comments.
func (h *FeedbackHandler) AddComment(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	comment, err := h.comments.Add(c.Context(), caller, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, comment)
}

func imageFromRef(ref *dto.ImageRef) *domain.Image {
	if ref == nil {
		return nil
	}
	return &domain.Image{PublicID: ref.PublicID, URL: ref.URL}
}
