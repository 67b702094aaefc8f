package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/feedback-board/internal/domain"
)

func exampleUser() *domain.User {
	return &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "Sam",
		Email:        "sam@example.com",
		PasswordHash: "$2a$12$secret",
		Role:         domain.RoleMember,
	}
}

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantNext *PageRef
		wantPrev *PageRef
	}{
		{name: "single page", page: 1, limit: 25, total: 10},
		{name: "first of many", page: 1, limit: 10, total: 35, wantNext: &PageRef{Page: 2, Limit: 10}},
		{name: "middle page", page: 2, limit: 10, total: 35,
			wantNext: &PageRef{Page: 3, Limit: 10}, wantPrev: &PageRef{Page: 1, Limit: 10}},
		{name: "last page", page: 4, limit: 10, total: 35, wantPrev: &PageRef{Page: 3, Limit: 10}},
		{name: "exact boundary", page: 2, limit: 10, total: 20, wantPrev: &PageRef{Page: 1, Limit: 10}},
		{name: "empty result", page: 1, limit: 25, total: 0},
		{name: "page past the end", page: 9, limit: 10, total: 35, wantPrev: &PageRef{Page: 8, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantNext, p.Next)
			assert.Equal(t, tt.wantPrev, p.Prev)
		})
	}
}

func TestNewUserResponseOmitsCredentials(t *testing.T) {
	// The response type has no password field at all; this pins the
	// mapping of what it does carry.
	resp := NewUserResponse(exampleUser())
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, "Sam", resp.Name)
	assert.Equal(t, "sam@example.com", resp.Email)
}
