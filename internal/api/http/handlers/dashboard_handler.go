package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autopulse/crm-service/internal/auth"
	"github.com/autopulse/crm-service/internal/domain"
	"github.com/autopulse/crm-service/internal/service"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// DashboardHandler serves role-scoped KPI payloads.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Sales GET /api/dashboard/sales. Defaults to the caller; a sales user
// may only query themselves.
func (h *DashboardHandler) Sales(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	userID := c.Query("userId")
	if userID == "" {
		userID = principal.User.ID
	}
	if principal.Role() == domain.RoleSales && userID != principal.User.ID {
		return apperrors.NewForbidden("sales users may only view their own dashboard")
	}

	dashboard, err := h.service.Sales(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard})
}

// Manager GET /api/dashboard/manager.
func (h *DashboardHandler) Manager(c *fiber.Ctx) error {
	dashboard, err := h.service.Manager(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard})
}
