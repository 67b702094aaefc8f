package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/persistence"
	"github.com/spec-kit/feedback-board/internal/repository"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

const (
	categoryCacheKey = "categories:all"
	categoryCacheTTL = 5 * time.Minute
)

// CategoryService manages the category catalogue. The full list is
// cached in Redis because it changes rarely and backs the public filter
// UI on every page load.
type CategoryService struct {
	categories repository.CategoryRepository
	redis      *persistence.Redis
	logger     *zap.Logger
}

// CategoryInput describes category create/update payload.
type CategoryInput struct {
	Name        string
	Description string
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository, redis *persistence.Redis, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, redis: redis, logger: logger}
}

// List returns all categories, from cache when possible.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, categories)
	return categories, nil
}

// Get fetches one category.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("no category found with id " + id)
	}
	category, err := s.categories.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("no category found with id " + id)
		}
		return nil, err
	}
	return category, nil
}

// Create adds a category; admin only (enforced at the route).
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := category.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.NewValidationError("category name already exists")
		}
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// Update renames or re-describes a category.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		category.Name = strings.TrimSpace(input.Name)
	}
	if input.Description != "" {
		category.Description = strings.TrimSpace(input.Description)
	}
	if err := category.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.categories.Update(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.NewValidationError("category name already exists")
		}
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// Delete removes the category record. Feedback referencing it is left
// untouched; the behavior of dangling references is intentionally
// undefined here.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) fromCache(ctx context.Context) []domain.Category {
	if s.redis == nil || s.redis.Client == nil {
		return nil
	}
	raw, err := s.redis.Client.Get(ctx, categoryCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var categories []domain.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil
	}
	return categories
}

func (s *CategoryService) toCache(ctx context.Context, categories []domain.Category) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return
	}
	if err := s.redis.Client.Set(ctx, categoryCacheKey, raw, categoryCacheTTL).Err(); err != nil {
		s.logger.Debug("category cache write failed", zap.Error(err))
	}
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	if err := s.redis.Client.Del(ctx, categoryCacheKey).Err(); err != nil {
		s.logger.Debug("category cache invalidation failed", zap.Error(err))
	}
}
