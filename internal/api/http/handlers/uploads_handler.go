package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/feedback-board/internal/api/dto"
	"github.com/spec-kit/feedback-board/internal/storage"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 5 << 20

// UploadsHandler pushes feedback images to the configured image store.
type UploadsHandler struct {
	images storage.ImageStore
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(images storage.ImageStore) *UploadsHandler {
	return &UploadsHandler{images: images}
}

// Upload POST /api/uploads. Accepts a multipart "image" file and
// returns the stored public id and URL for use in a feedback payload.
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("image file is required")
	}
	if header.Size > maxUploadBytes {
		return apperrors.NewValidationError("image exceeds the 5MB limit")
	}

	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unable to read uploaded file")
	}
	defer file.Close()

	image, err := h.images.Upload(c.Context(), file, uuid.NewString())
	if err != nil {
		if err == storage.ErrNotConfigured {
			return apperrors.NewValidationError("image uploads are not enabled")
		}
		return apperrors.NewInternalError(err)
	}

	return respondData(c, http.StatusCreated, dto.ImageRef{
		PublicID: image.PublicID,
		URL:      image.URL,
	})
}
