package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autopulse/crm-service/internal/api/dto"
	"github.com/autopulse/crm-service/internal/service"
)

// UsersHandler manages user read endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.service.List(c.Context(), queryPtr(c, "role"))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}})
}

func userResponse(user *service.UserWithCounts) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		ActiveLeads: user.ActiveLeads,
		TotalLeads:  user.TotalLeads,
		Converted:   user.Converted,
	}
}
