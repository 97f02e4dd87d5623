package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/autopulse/crm-service/internal/api/dto"
	"github.com/autopulse/crm-service/internal/service"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// LeadsHandler manages lead CRUD and lifecycle endpoints.
type LeadsHandler struct {
	service *service.LeadService
}

// NewLeadsHandler constructs the handler.
func NewLeadsHandler(leadService *service.LeadService) *LeadsHandler {
	return &LeadsHandler{service: leadService}
}

// List GET /api/leads.
func (h *LeadsHandler) List(c *fiber.Ctx) error {
	filter := service.ListFilter{
		AssignedTo: queryPtr(c, "assignedTo"),
		Status:     queryPtr(c, "status"),
		Source:     queryPtr(c, "source"),
		Search:     queryPtr(c, "search"),
		Sort:       c.Query("sort"),
	}
	leads, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, leadResponse(&leads[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Summary GET /api/leads/summary.
func (h *LeadsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Get GET /api/leads/:id.
func (h *LeadsHandler) Get(c *fiber.Ctx) error {
	lead, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Create POST /api/leads.
func (h *LeadsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.service.Create(c.Context(), service.LeadCreateInput{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		Source:            req.Source,
		VehicleInterested: req.VehicleInterested,
		Budget:            req.Budget,
		Status:            req.Status,
		AssignedTo:        req.AssignedTo,
		FollowUpDate:      req.FollowUpDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":         leadResponse(&result.Lead),
		"autoAssigned": result.AutoAssigned,
	})
}

// Update PUT /api/leads/:id.
func (h *LeadsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lead, err := h.service.Update(c.Context(), c.Params("id"), service.LeadUpdateInput{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		Source:            req.Source,
		VehicleInterested: req.VehicleInterested,
		Budget:            req.Budget,
		Status:            req.Status,
		AssignedTo:        req.AssignedTo,
		Score:             req.Score,
		FollowUpDate:      req.FollowUpDate,
		UpdatedBy:         req.UpdatedBy,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Delete DELETE /api/leads/:id.
func (h *LeadsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Convert POST /api/leads/:id/convert.
func (h *LeadsHandler) Convert(c *fiber.Ctx) error {
	var req dto.ConvertLeadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	lead, err := h.service.Convert(c.Context(), c.Params("id"), req.PerformedBy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// CheckDuplicate POST /api/leads/check-duplicate.
func (h *LeadsHandler) CheckDuplicate(c *fiber.Ctx) error {
	var req dto.CheckDuplicateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Phone == "" {
		return apperrors.NewValidationError("phone required", nil)
	}

	existing, err := h.service.CheckDuplicate(c.Context(), req.Phone)
	if err != nil {
		return err
	}
	resp := dto.DuplicateCheckResponse{IsDuplicate: existing != nil}
	if existing != nil {
		lead := leadResponse(existing)
		resp.Existing = &lead
	}
	return c.JSON(fiber.Map{"data": resp})
}

func queryPtr(c *fiber.Ctx, key string) *string {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	return &val
}

func leadResponse(lead *service.EnrichedLead) dto.LeadResponse {
	return dto.LeadResponse{
		ID:                lead.ID,
		Name:              lead.Name,
		Phone:             lead.Phone,
		Email:             lead.Email,
		Source:            string(lead.Source),
		VehicleInterested: lead.VehicleInterested,
		Budget:            lead.Budget,
		Status:            string(lead.Status),
		AssignedTo:        lead.AssignedTo,
		AssignedName:      lead.AssignedName,
		Score:             string(lead.ComputedScore),
		FollowUpDate:      lead.FollowUpDate,
		LastActivityDate:  lead.LastActivityDate,
		CreatedAt:         lead.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         lead.UpdatedAt.Format(time.RFC3339),
		DaysSinceActivity: lead.DaysSinceActivity,
		IsAging:           lead.IsAging,
	}
}
