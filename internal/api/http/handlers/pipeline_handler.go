package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autopulse/crm-service/internal/api/dto"
	"github.com/autopulse/crm-service/internal/auth"
	"github.com/autopulse/crm-service/internal/service"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// PipelineHandler serves the kanban board projection and board moves.
type PipelineHandler struct {
	service *service.PipelineService
}

// NewPipelineHandler constructs the handler.
func NewPipelineHandler(pipelineService *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{service: pipelineService}
}

// Board GET /api/pipeline/board.
func (h *PipelineHandler) Board(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	board, err := h.service.Board(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": boardResponse(board)})
}

// Move POST /api/pipeline/move.
func (h *PipelineHandler) Move(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.MoveLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.LeadID == "" || req.ToStage == "" {
		return apperrors.NewValidationError("lead_id and to_stage required", nil)
	}

	result, err := h.service.Move(c.Context(), principal, req.LeadID, req.ToStage)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MoveLeadResponse{
		Lead:  leadResponse(&result.Lead),
		Board: boardResponse(result.Board),
	}})
}

func boardResponse(columns []service.BoardColumn) []dto.BoardColumnResponse {
	result := make([]dto.BoardColumnResponse, 0, len(columns))
	for _, column := range columns {
		leads := make([]dto.LeadResponse, 0, len(column.Leads))
		for i := range column.Leads {
			leads = append(leads, leadResponse(&column.Leads[i]))
		}
		result = append(result, dto.BoardColumnResponse{
			Stage: string(column.Stage),
			Leads: leads,
		})
	}
	return result
}
