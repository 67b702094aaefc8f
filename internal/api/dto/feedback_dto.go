package dto

import "github.com/spec-kit/feedback-board/internal/domain"

// ImageRef is an uploaded image reference as returned by POST /uploads.
type ImageRef struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// CreateFeedbackRequest payload.
type CreateFeedbackRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Status      domain.FeedbackStatus `json:"status"`
	Image       *ImageRef             `json:"image"`
}

// UpdateFeedbackRequest payload; absent fields are left unchanged.
type UpdateFeedbackRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Category    *string                `json:"category"`
	Status      *domain.FeedbackStatus `json:"status"`
	Image       *ImageRef              `json:"image"`
}

// PageRef points at an adjacent page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries next/prev descriptors; either may be absent.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// BuildPagination derives next/prev from the page window and total.
func BuildPagination(page, limit int, total int64) Pagination {
	var p Pagination
	if int64(page*limit) < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}
