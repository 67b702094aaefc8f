package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxCategoryNameLen = 50
	maxCategoryDescLen = 500
)

// Category groups feedback items. Referenced by id from Feedback.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Validate checks field constraints prior to persistence.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errRequired("name")
	}
	if len(c.Name) > maxCategoryNameLen {
		return errTooLong("name", maxCategoryNameLen)
	}
	if strings.TrimSpace(c.Description) == "" {
		return errRequired("description")
	}
	if len(c.Description) > maxCategoryDescLen {
		return errTooLong("description", maxCategoryDescLen)
	}
	return nil
}
