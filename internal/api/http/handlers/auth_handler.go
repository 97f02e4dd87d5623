package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autopulse/crm-service/internal/api/dto"
	"github.com/autopulse/crm-service/internal/service"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, expiresAt, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserResponse{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
				Role:  string(user.Role),
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}
