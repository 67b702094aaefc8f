package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/persistence"
)

// CommentRepository defines persistence access for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error)
	ListByFeedback(ctx context.Context, feedbackID primitive.ObjectID) ([]domain.Comment, error)
	ListByFeedbackIDs(ctx context.Context, feedbackIDs []primitive.ObjectID) ([]domain.Comment, error)
	List(ctx context.Context) ([]domain.Comment, error)
}

type commentRepository struct {
	collection *mongo.Collection
}

// NewCommentRepository returns a Mongo-backed implementation.
func NewCommentRepository(db *persistence.Mongo) CommentRepository {
	return &commentRepository{collection: db.Collection(persistence.CollectionComments)}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": comment.ID}, comment)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByFeedback(ctx context.Context, feedbackID primitive.ObjectID) ([]domain.Comment, error) {
	return r.find(ctx, bson.M{"feedback": feedbackID})
}

func (r *commentRepository) ListByFeedbackIDs(ctx context.Context, feedbackIDs []primitive.ObjectID) ([]domain.Comment, error) {
	if len(feedbackIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"feedback": bson.M{"$in": feedbackIDs}})
}

func (r *commentRepository) List(ctx context.Context) ([]domain.Comment, error) {
	return r.find(ctx, bson.M{})
}

func (r *commentRepository) find(ctx context.Context, filter bson.M) ([]domain.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var comments []domain.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
