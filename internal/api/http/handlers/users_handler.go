package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-board/internal/api/dto"
	"github.com/spec-kit/feedback-board/internal/auth"
	"github.com/spec-kit/feedback-board/internal/service"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// UsersHandler serves account endpoints: self-service auth plus the
// admin user management surface.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Register POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	user, token, expiresAt, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return respondToken(c, http.StatusCreated, dto.NewUserResponse(user), token, expiresAt)
}

// Login POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	user, token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respondToken(c, http.StatusOK, dto.NewUserResponse(user), token, expiresAt)
}

// Me GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return respondData(c, http.StatusOK, dto.NewUserResponse(caller))
}

// Logout GET /api/users/logout. Revokes the presented token until it
// would have expired anyway.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.Context(), principal.Token, time.Unix(principal.ExpiresAt, 0)); err != nil {
		return err
	}
	return respondMessage(c, "logged out")
}

// List GET /api/users. Admin only.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return err
	}
	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.NewUserResponse(&users[i]))
	}
	return respondList(c, int64(len(responses)), responses)
}

// Get GET /api/users/:id. Admin only.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, dto.NewUserResponse(user))
}

// Create POST /api/users. Admin only.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	user, err := h.users.Create(c.Context(), userInput(req))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, dto.NewUserResponse(user))
}

// Update PUT /api/users/:id. Self or admin; role changes admin only.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	caller := auth.UserFromContext(c)
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	user, err := h.users.Update(c.Context(), caller, c.Params("id"), userInput(req))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, dto.NewUserResponse(user))
}

// Delete DELETE /api/users/:id. Admin only.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, fiber.Map{})
}

func userInput(req dto.UserRequest) service.UserInput {
	return service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
		Role:     req.Role,
	}
}
