package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/repository"
)

// UserRef is the public slice of a user embedded in responses.
type UserRef struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Avatar string             `json:"avatar,omitempty"`
	Email  string             `json:"email,omitempty"`
}

// CategoryRef is the category name resolved for a feedback item.
type CategoryRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	Text      string             `json:"text"`
	User      *UserRef           `json:"user,omitempty"`
	Feedback  primitive.ObjectID `json:"feedback"`
	CreatedAt time.Time          `json:"createdAt"`
}

// FeedbackView is a feedback item with owner, category and comments
// dereferenced for the client.
type FeedbackView struct {
	ID          primitive.ObjectID    `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Image       *domain.Image         `json:"image,omitempty"`
	Category    *CategoryRef          `json:"category,omitempty"`
	Status      domain.FeedbackStatus `json:"status"`
	Upvotes     int                   `json:"upvotes"`
	UpvotedBy   []primitive.ObjectID  `json:"upvotedBy"`
	User        *UserRef              `json:"user,omitempty"`
	Comments    []CommentView         `json:"comments"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// resolver batches the reference lookups needed to build views. One $in
// query per collection regardless of page size.
type resolver struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
}

func (r *resolver) resolveFeedback(ctx context.Context, items []domain.Feedback) ([]FeedbackView, error) {
	userIDs := make([]primitive.ObjectID, 0, len(items))
	categoryIDs := make([]primitive.ObjectID, 0, len(items))
	feedbackIDs := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		if !items[i].User.IsZero() {
			userIDs = append(userIDs, items[i].User)
		}
		if !items[i].Category.IsZero() {
			categoryIDs = append(categoryIDs, items[i].Category)
		}
		feedbackIDs = append(feedbackIDs, items[i].ID)
	}

	comments, err := r.comments.ListByFeedbackIDs(ctx, feedbackIDs)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if !comments[i].User.IsZero() {
			userIDs = append(userIDs, comments[i].User)
		}
	}

	userByID, err := r.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	categoryByID, err := r.categoriesByID(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	commentsByFeedback := make(map[primitive.ObjectID][]CommentView)
	for i := range comments {
		view := commentView(&comments[i], userByID, false)
		commentsByFeedback[comments[i].Feedback] = append(commentsByFeedback[comments[i].Feedback], view)
	}

	views := make([]FeedbackView, 0, len(items))
	for i := range items {
		item := &items[i]
		view := FeedbackView{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Image:       item.Image,
			Status:      item.Status,
			Upvotes:     item.Upvotes,
			UpvotedBy:   item.UpvotedBy,
			CreatedAt:   item.CreatedAt,
			Comments:    commentsByFeedback[item.ID],
		}
		if view.Comments == nil {
			view.Comments = []CommentView{}
		}
		if owner, ok := userByID[item.User]; ok {
			view.User = &UserRef{ID: owner.ID, Name: owner.Name, Avatar: owner.Avatar, Email: owner.Email}
		}
		if category, ok := categoryByID[item.Category]; ok {
			view.Category = &CategoryRef{ID: category.ID, Name: category.Name}
		}
		views = append(views, view)
	}
	return views, nil
}

func (r *resolver) resolveComments(ctx context.Context, comments []domain.Comment, includeEmail bool) ([]CommentView, error) {
	userIDs := make([]primitive.ObjectID, 0, len(comments))
	for i := range comments {
		if !comments[i].User.IsZero() {
			userIDs = append(userIDs, comments[i].User)
		}
	}
	userByID, err := r.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i], userByID, includeEmail))
	}
	return views, nil
}

func (r *resolver) usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.User, error) {
	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (r *resolver) categoriesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Category, error) {
	categories, err := r.categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID, nil
}

func commentView(comment *domain.Comment, userByID map[primitive.ObjectID]domain.User, includeEmail bool) CommentView {
	view := CommentView{
		ID:        comment.ID,
		Text:      comment.Text,
		Feedback:  comment.Feedback,
		CreatedAt: comment.CreatedAt,
	}
	if author, ok := userByID[comment.User]; ok {
		ref := &UserRef{ID: author.ID, Name: author.Name, Avatar: author.Avatar}
		if includeEmail {
			ref.Email = author.Email
		}
		view.User = ref
	}
	return view
}
