package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validFeedback() Feedback {
	return Feedback{
		Title:       "Dark mode",
		Description: "Please add a dark theme",
		Category:    primitive.NewObjectID(),
		Status:      StatusOpen,
		User:        primitive.NewObjectID(),
	}
}

func TestFeedbackValidate(t *testing.T) {
	f := validFeedback()
	assert.NoError(t, f.Validate())
}

func TestFeedbackValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Feedback)
	}{
		{"blank title", func(f *Feedback) { f.Title = "   " }},
		{"title too long", func(f *Feedback) { f.Title = strings.Repeat("x", 101) }},
		{"blank description", func(f *Feedback) { f.Description = "" }},
		{"description too long", func(f *Feedback) { f.Description = strings.Repeat("x", 1001) }},
		{"missing category", func(f *Feedback) { f.Category = primitive.NilObjectID }},
		{"missing user", func(f *Feedback) { f.User = primitive.NilObjectID }},
		{"unknown status", func(f *Feedback) { f.Status = "wontfix" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFeedback()
			tt.mutate(&f)
			assert.Error(t, f.Validate())
		})
	}
}

func TestHasUpvoted(t *testing.T) {
	voter := primitive.NewObjectID()
	f := validFeedback()
	assert.False(t, f.HasUpvoted(voter))

	f.UpvotedBy = append(f.UpvotedBy, voter)
	assert.True(t, f.HasUpvoted(voter))
	assert.False(t, f.HasUpvoted(primitive.NewObjectID()))
}

func TestValidStatus(t *testing.T) {
	for _, status := range []FeedbackStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed} {
		assert.True(t, ValidStatus(status))
	}
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}
