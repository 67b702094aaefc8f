package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/persistence"
	"github.com/spec-kit/feedback-board/internal/query"
)

// ErrAlreadyUpvoted signals a repeat upvote by the same user.
var ErrAlreadyUpvoted = errors.New("already upvoted")

// FeedbackRepository encapsulates feedback persistence.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	Update(ctx context.Context, feedback *domain.Feedback) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Feedback, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Feedback, error)
	ListWithListing(ctx context.Context, listing *query.Listing) ([]domain.Feedback, int64, error)
	AddUpvote(ctx context.Context, id, userID primitive.ObjectID) error
}

type feedbackRepository struct {
	collection *mongo.Collection
}

// NewFeedbackRepository returns a Mongo-backed implementation.
func NewFeedbackRepository(db *persistence.Mongo) FeedbackRepository {
	return &feedbackRepository{collection: db.Collection(persistence.CollectionFeedback)}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	if feedback.ID.IsZero() {
		feedback.ID = primitive.NewObjectID()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	if feedback.UpvotedBy == nil {
		feedback.UpvotedBy = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, feedback)
	return err
}

// Update persists the content fields only. Upvote state moves solely
// through AddUpvote, so a stale snapshot here can never roll back a
// vote that landed after the caller's fetch.
func (r *feedbackRepository) Update(ctx context.Context, feedback *domain.Feedback) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": feedback.ID}, contentUpdate(feedback))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func contentUpdate(feedback *domain.Feedback) bson.M {
	set := bson.M{
		"title":       feedback.Title,
		"description": feedback.Description,
		"category":    feedback.Category,
		"status":      feedback.Status,
	}
	update := bson.M{"$set": set}
	if feedback.Image != nil {
		set["image"] = feedback.Image
	} else {
		update["$unset"] = bson.M{"image": ""}
	}
	return update
}

func (r *feedbackRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Feedback, error) {
	var feedback domain.Feedback
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Feedback, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var items []domain.Feedback
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListWithListing runs the translated listing: the same filter drives
// both the total count and the page fetch so pagination metadata stays
// consistent with the results.
func (r *feedbackRepository) ListWithListing(ctx context.Context, listing *query.Listing) ([]domain.Feedback, int64, error) {
	filter := buildFilter(listing)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(buildSort(listing.Sort)).
		SetSkip(int64(listing.Offset())).
		SetLimit(int64(listing.Limit))
	if len(listing.Select) > 0 {
		projection := bson.M{}
		for _, field := range listing.Select {
			projection[field] = 1
		}
		opts.SetProjection(projection)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var items []domain.Feedback
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AddUpvote appends the user to the upvote set and increments the counter
// in one conditional update, so concurrent upvotes cannot diverge the
// count from the set. A zero match on an existing document means the user
// was already in the set.
func (r *feedbackRepository) AddUpvote(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "upvotedBy": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"upvotedBy": userID},
			"$inc":      bson.M{"upvotes": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// A zero match is either a repeat vote or a document that was
		// deleted since the caller's existence check.
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			return err
		}
		return ErrAlreadyUpvoted
	}
	return nil
}

func buildFilter(listing *query.Listing) bson.M {
	filter := bson.M{}
	ranges := map[string]bson.M{}

	for _, cond := range listing.Conditions {
		switch cond.Op {
		case query.OpEq:
			filter[cond.Field] = cond.Value
		case query.OpIn:
			filter[cond.Field] = bson.M{"$in": cond.Value}
		default:
			rng, ok := ranges[cond.Field]
			if !ok {
				rng = bson.M{}
				ranges[cond.Field] = rng
				filter[cond.Field] = rng
			}
			rng["$"+string(cond.Op)] = cond.Value
		}
	}

	if listing.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(listing.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	return filter
}

func buildSort(fields []query.SortField) bson.D {
	sort := bson.D{}
	for _, field := range fields {
		order := 1
		if field.Desc {
			order = -1
		}
		sort = append(sort, bson.E{Key: field.Field, Value: order})
	}
	return sort
}
