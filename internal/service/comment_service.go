package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/events"
	"github.com/spec-kit/feedback-board/internal/repository"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// CommentService manages comment lifecycle and ownership rules.
type CommentService struct {
	comments   repository.CommentRepository
	feedback   repository.FeedbackRepository
	dispatcher events.Dispatcher
	resolver   *resolver
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo  repository.CommentRepository
	FeedbackRepo repository.FeedbackRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		feedback:   deps.FeedbackRepo,
		dispatcher: deps.Dispatcher,
		resolver: &resolver{
			users:      deps.UserRepo,
			categories: deps.CategoryRepo,
			comments:   deps.CommentRepo,
		},
	}
}

// Add attaches a comment to an existing feedback item, owned by the
// caller.
func (s *CommentService) Add(ctx context.Context, caller *domain.User, feedbackID, text string) (*domain.Comment, error) {
	parentID, err := primitive.ObjectIDFromHex(feedbackID)
	if err != nil {
		return nil, apperrors.NewNotFound("no feedback found with id " + feedbackID)
	}
	if _, err := s.feedback.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("no feedback found with id " + feedbackID)
		}
		return nil, err
	}

	comment := &domain.Comment{
		Text:     strings.TrimSpace(text),
		User:     caller.ID,
		Feedback: parentID,
	}
	if err := comment.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:       events.EventCommentAdded,
			FeedbackID: parentID.Hex(),
			ActorID:    caller.ID.Hex(),
			Timestamp:  time.Now().UTC(),
			Payload: events.CommentAddedPayload{
				CommentID:   comment.ID.Hex(),
				TextPreview: preview(comment.Text, 120),
			},
		})
	}
	return comment, nil
}

// ListForFeedback returns the comments on one feedback item with their
// authors resolved.
func (s *CommentService) ListForFeedback(ctx context.Context, feedbackID string) ([]CommentView, error) {
	parentID, err := primitive.ObjectIDFromHex(feedbackID)
	if err != nil {
		return nil, apperrors.NewNotFound("no feedback found with id " + feedbackID)
	}
	comments, err := s.comments.ListByFeedback(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return s.resolver.resolveComments(ctx, comments, false)
}

// List returns every comment; moderation view.
func (s *CommentService) List(ctx context.Context) ([]CommentView, error) {
	comments, err := s.comments.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolver.resolveComments(ctx, comments, false)
}

// Get fetches a single comment with its author resolved.
func (s *CommentService) Get(ctx context.Context, id string) (*CommentView, error) {
	comment, err := s.getByHex(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.resolver.resolveComments(ctx, []domain.Comment{*comment}, false)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update rewrites the comment text; owner or admin only.
func (s *CommentService) Update(ctx context.Context, caller *domain.User, id, text string) (*domain.Comment, error) {
	comment, err := s.getByHex(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(caller, comment.User) {
		return nil, apperrors.NewForbidden("not authorized to update this comment")
	}

	comment.Text = strings.TrimSpace(text)
	if err := comment.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment; owner or admin only.
func (s *CommentService) Delete(ctx context.Context, caller *domain.User, id string) error {
	comment, err := s.getByHex(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(caller, comment.User) {
		return apperrors.NewForbidden("not authorized to delete this comment")
	}
	return s.comments.Delete(ctx, comment.ID)
}

func (s *CommentService) getByHex(ctx context.Context, id string) (*domain.Comment, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("no comment found with id " + id)
	}
	comment, err := s.comments.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("no comment found with id " + id)
		}
		return nil, err
	}
	return comment, nil
}

// preview truncates on a rune boundary; a byte slice could split a
// multibyte character mid-sequence.
func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
