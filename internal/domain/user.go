package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole distinguishes regular members from administrators.
type UserRole string

const (
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

// ValidRole reports whether the role is one of the known values.
func ValidRole(role UserRole) bool {
	return role == RoleMember || role == RoleAdmin
}

// User is an account that owns feedback items and comments.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role         UserRole           `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Validate checks field constraints prior to persistence.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errRequired("name")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errRequired("email")
	}
	if !strings.Contains(u.Email, "@") {
		return errInvalid("email")
	}
	if !ValidRole(u.Role) {
		return errInvalid("role")
	}
	return nil
}
