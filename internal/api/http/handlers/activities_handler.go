package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/autopulse/crm-service/internal/api/dto"
	"github.com/autopulse/crm-service/internal/domain"
	"github.com/autopulse/crm-service/internal/service"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// ActivitiesHandler manages the per-lead activity log endpoints.
type ActivitiesHandler struct {
	service *service.ActivityService
}

// NewActivitiesHandler constructs the handler.
func NewActivitiesHandler(activityService *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{service: activityService}
}

// List GET /api/leads/:id/activities.
func (h *ActivitiesHandler) List(c *fiber.Ctx) error {
	activities, err := h.service.ListForLead(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, activityResponse(&activities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/leads/:id/activities.
func (h *ActivitiesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	activity, err := h.service.Append(c.Context(), c.Params("id"), service.ActivityInput{
		Type:        req.Type,
		Description: req.Description,
		PerformedBy: req.PerformedBy,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": activityResponse(activity)})
}

func activityResponse(activity *domain.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:          activity.ID,
		LeadID:      activity.LeadID,
		Type:        string(activity.Type),
		Description: activity.Description,
		PerformedBy: activity.PerformedBy,
		CreatedAt:   activity.CreatedAt.Format(time.RFC3339),
	}
}
