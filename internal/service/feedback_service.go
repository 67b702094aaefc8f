package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/events"
	"github.com/spec-kit/feedback-board/internal/query"
	"github.com/spec-kit/feedback-board/internal/repository"
	"github.com/spec-kit/feedback-board/internal/storage"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// FeedbackService coordinates feedback workflows and domain rules.
type FeedbackService struct {
	feedback   repository.FeedbackRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	images     storage.ImageStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	resolver   *resolver
}

// FeedbackDependencies bundles collaborators for the feedback service.
type FeedbackDependencies struct {
	FeedbackRepo repository.FeedbackRepository
	CommentRepo  repository.CommentRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	Images       storage.ImageStore
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// FeedbackCreateInput describes feedback creation payload.
type FeedbackCreateInput struct {
	Title       string
	Description string
	CategoryID  string
	Status      domain.FeedbackStatus
	Image       *domain.Image
}

// FeedbackUpdateInput describes a partial update; nil fields are kept.
type FeedbackUpdateInput struct {
	Title       *string
	Description *string
	CategoryID  *string
	Status      *domain.FeedbackStatus
	Image       *domain.Image
}

// FeedbackListResult is a translated page of feedback plus the total.
type FeedbackListResult struct {
	Items []FeedbackView
	Total int64
	Page  int
	Limit int
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	return &FeedbackService{
		feedback:   deps.FeedbackRepo,
		comments:   deps.CommentRepo,
		categories: deps.CategoryRepo,
		users:      deps.UserRepo,
		images:     deps.Images,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		resolver: &resolver{
			users:      deps.UserRepo,
			categories: deps.CategoryRepo,
			comments:   deps.CommentRepo,
		},
	}
}

// Create stores a new feedback item owned by the caller. The category
// reference must point at an existing category.
func (s *FeedbackService) Create(ctx context.Context, caller *domain.User, input FeedbackCreateInput) (*domain.Feedback, error) {
	categoryID, err := primitive.ObjectIDFromHex(input.CategoryID)
	if err != nil {
		return nil, apperrors.NewValidationError("category is invalid")
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewValidationError("category does not exist")
		}
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.StatusOpen
	}

	feedback := &domain.Feedback{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Image:       input.Image,
		Category:    categoryID,
		Status:      status,
		UpvotedBy:   []primitive.ObjectID{},
		User:        caller.ID,
	}
	if err := feedback.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:       events.EventFeedbackCreated,
		FeedbackID: feedback.ID.Hex(),
		ActorID:    caller.ID.Hex(),
		Payload: events.FeedbackCreatedPayload{
			CategoryID: feedback.Category.Hex(),
			Title:      feedback.Title,
		},
	})
	return feedback, nil
}

// List runs a translated listing and resolves references for the page.
func (s *FeedbackService) List(ctx context.Context, listing *query.Listing) (*FeedbackListResult, error) {
	items, total, err := s.feedback.ListWithListing(ctx, listing)
	if err != nil {
		return nil, err
	}
	views, err := s.resolver.resolveFeedback(ctx, items)
	if err != nil {
		return nil, err
	}
	return &FeedbackListResult{
		Items: views,
		Total: total,
		Page:  listing.Page,
		Limit: listing.Limit,
	}, nil
}

// Get fetches one feedback item with references resolved. Readable by
// anyone.
func (s *FeedbackService) Get(ctx context.Context, id string) (*FeedbackView, error) {
	feedback, err := s.getByHex(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.resolver.resolveFeedback(ctx, []domain.Feedback{*feedback})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListMine returns everything the caller submitted, newest first.
func (s *FeedbackService) ListMine(ctx context.Context, caller *domain.User) ([]FeedbackView, error) {
	items, err := s.feedback.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return s.resolver.resolveFeedback(ctx, items)
}

// Update applies a partial update. Existence is checked before
// ownership, so a non-owner learns the item exists but gets a 403.
func (s *FeedbackService) Update(ctx context.Context, caller *domain.User, id string, input FeedbackUpdateInput) (*domain.Feedback, error) {
	feedback, err := s.getByHex(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(caller, feedback.User) {
		return nil, apperrors.NewForbidden("not authorized to update this feedback")
	}

	oldStatus := feedback.Status
	if input.Title != nil {
		feedback.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		feedback.Description = strings.TrimSpace(*input.Description)
	}
	if input.CategoryID != nil {
		categoryID, err := primitive.ObjectIDFromHex(*input.CategoryID)
		if err != nil {
			return nil, apperrors.NewValidationError("category is invalid")
		}
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperrors.NewValidationError("category does not exist")
			}
			return nil, err
		}
		feedback.Category = categoryID
	}
	if input.Status != nil {
		feedback.Status = *input.Status
	}
	if input.Image != nil {
		feedback.Image = input.Image
	}

	if err := feedback.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.feedback.Update(ctx, feedback); err != nil {
		return nil, err
	}

	if feedback.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:       events.EventFeedbackStatusChanged,
			FeedbackID: feedback.ID.Hex(),
			ActorID:    caller.ID.Hex(),
			Payload: events.FeedbackStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: feedback.Status,
			},
		})
	}
	return feedback, nil
}

// Delete removes a feedback item; owner or admin only. The hosted image
// is deleted best-effort: a storage failure is logged and never blocks
// the deletion.
func (s *FeedbackService) Delete(ctx context.Context, caller *domain.User, id string) error {
	feedback, err := s.getByHex(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(caller, feedback.User) {
		return apperrors.NewForbidden("not authorized to delete this feedback")
	}

	if feedback.Image != nil && feedback.Image.PublicID != "" {
		if err := s.images.Delete(ctx, feedback.Image.PublicID); err != nil {
			s.logger.Warn("image cleanup failed",
				zap.String("feedback_id", feedback.ID.Hex()),
				zap.String("public_id", feedback.Image.PublicID),
				zap.Error(err))
		}
	}

	if err := s.feedback.Delete(ctx, feedback.ID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:       events.EventFeedbackDeleted,
		FeedbackID: feedback.ID.Hex(),
		ActorID:    caller.ID.Hex(),
	})
	return nil
}

// Upvote endorses a feedback item once per user. A repeat upvote is an
// explicit rejection. The set append and counter increment are one
// atomic conditional update in the store.
func (s *FeedbackService) Upvote(ctx context.Context, caller *domain.User, id string) (*domain.Feedback, error) {
	feedback, err := s.getByHex(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.feedback.AddUpvote(ctx, feedback.ID, caller.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyUpvoted):
			return nil, apperrors.NewValidationError("you have already upvoted this feedback")
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, apperrors.NewNotFound("no feedback found with id " + id)
		}
		return nil, err
	}

	updated, err := s.feedback.GetByID(ctx, feedback.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:       events.EventFeedbackUpvoted,
		FeedbackID: updated.ID.Hex(),
		ActorID:    caller.ID.Hex(),
		Payload:    events.FeedbackUpvotedPayload{Upvotes: updated.Upvotes},
	})
	return updated, nil
}

func (s *FeedbackService) getByHex(ctx context.Context, id string) (*domain.Feedback, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("no feedback found with id " + id)
	}
	feedback, err := s.feedback.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("no feedback found with id " + id)
		}
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}

// canModify implements the owner-or-admin rule shared by feedback and
// comments.
func canModify(caller *domain.User, ownerID primitive.ObjectID) bool {
	if caller == nil {
		return false
	}
	return caller.ID == ownerID || caller.IsAdmin()
}
