package events

import (
	"time"

	"github.com/spec-kit/feedback-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFeedbackCreated       EventType = "feedback_created"
	EventFeedbackStatusChanged EventType = "feedback_status_changed"
	EventFeedbackUpvoted       EventType = "feedback_upvoted"
	EventFeedbackDeleted       EventType = "feedback_deleted"
	EventCommentAdded          EventType = "comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	Type       EventType   `json:"type"`
	FeedbackID string      `json:"feedback_id"`
	ActorID    string      `json:"actor_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// FeedbackCreatedPayload payload.
type FeedbackCreatedPayload struct {
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
}

// FeedbackStatusChangedPayload payload.
type FeedbackStatusChangedPayload struct {
	OldStatus domain.FeedbackStatus `json:"old_status"`
	NewStatus domain.FeedbackStatus `json:"new_status"`
}

// FeedbackUpvotedPayload payload.
type FeedbackUpvotedPayload struct {
	Upvotes int `json:"upvotes"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	TextPreview string `json:"text_preview"`
}
