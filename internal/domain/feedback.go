package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackStatus enumerates lifecycle states for feedback items.
type FeedbackStatus string

const (
	StatusOpen       FeedbackStatus = "open"
	StatusInProgress FeedbackStatus = "in-progress"
	StatusResolved   FeedbackStatus = "resolved"
	StatusClosed     FeedbackStatus = "closed"
)

// ValidStatus reports whether the status is one of the known values.
func ValidStatus(status FeedbackStatus) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

const (
	maxFeedbackTitleLen = 100
	maxFeedbackDescLen  = 1000
)

// Image references an externally stored picture.
type Image struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

// Feedback is the central aggregate: a user-submitted suggestion or bug
// report. The upvotes counter always equals len(UpvotedBy).
type Feedback struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Image       *Image               `bson:"image,omitempty" json:"image,omitempty"`
	Category    primitive.ObjectID   `bson:"category" json:"category"`
	Status      FeedbackStatus       `bson:"status" json:"status"`
	Upvotes     int                  `bson:"upvotes" json:"upvotes"`
	UpvotedBy   []primitive.ObjectID `bson:"upvotedBy" json:"upvotedBy"`
	User        primitive.ObjectID   `bson:"user" json:"user"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// HasUpvoted reports whether the given user already upvoted.
func (f *Feedback) HasUpvoted(userID primitive.ObjectID) bool {
	for _, id := range f.UpvotedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Validate checks field constraints prior to persistence.
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return errRequired("title")
	}
	if len(f.Title) > maxFeedbackTitleLen {
		return errTooLong("title", maxFeedbackTitleLen)
	}
	if strings.TrimSpace(f.Description) == "" {
		return errRequired("description")
	}
	if len(f.Description) > maxFeedbackDescLen {
		return errTooLong("description", maxFeedbackDescLen)
	}
	if f.Category.IsZero() {
		return errRequired("category")
	}
	if f.User.IsZero() {
		return errRequired("user")
	}
	if !ValidStatus(f.Status) {
		return errInvalid("status")
	}
	return nil
}
