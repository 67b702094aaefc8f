package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-board/internal/api/dto"
	"github.com/spec-kit/feedback-board/internal/service"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// CategoriesHandler manages category endpoints. Reads are public,
// writes are admin-only and guarded at the router.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categoryService *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categoryService}
}

// List GET /api/categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.Context())
	if err != nil {
		return err
	}
	return respondList(c, int64(len(categories)), categories)
}

// Get GET /api/categories/:id.
func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	category, err := h.categories.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, category)
}

// Create POST /api/categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	category, err := h.categories.Create(c.Context(), service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, category)
}

// Update PUT /api/categories/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	category, err := h.categories.Update(c.Context(), c.Params("id"), service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, category)
}

// Delete DELETE /api/categories/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	if err := h.categories.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, fiber.Map{})
}
