package dto

// CommentRequest payload for create and update.
type CommentRequest struct {
	Text string `json:"text"`
}

// CategoryRequest payload for create and update.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
