package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxCommentTextLen = 500

// Comment is attached to a feedback item and owned by its author.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text      string             `bson:"text" json:"text"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Feedback  primitive.ObjectID `bson:"feedback" json:"feedback"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Validate checks field constraints prior to persistence.
func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return errRequired("text")
	}
	if len(c.Text) > maxCommentTextLen {
		return errTooLong("text", maxCommentTextLen)
	}
	if c.User.IsZero() {
		return errRequired("user")
	}
	if c.Feedback.IsZero() {
		return errRequired("feedback")
	}
	return nil
}
