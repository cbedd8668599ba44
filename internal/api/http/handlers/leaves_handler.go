package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techtimeoff/leave-service/internal/api/dto"
	"github.com/techtimeoff/leave-service/internal/service"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// LeavesHandler exposes the leave request workflow.
type LeavesHandler struct {
	leaves *service.LeaveService
}

// NewLeavesHandler constructs handler.
func NewLeavesHandler(leaves *service.LeaveService) *LeavesHandler {
	return &LeavesHandler{leaves: leaves}
}

// Create handles POST /leaves.
func (h *LeavesHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	in, err := leaveInput(c)
	if err != nil {
		return err
	}

	leave, err := h.leaves.Create(c.UserContext(), actor.ID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Leave request submitted successfully",
		"leave":   dto.NewLeaveResponse(leave),
	})
}

// List handles GET /leaves.
func (h *LeavesHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	leaves, err := h.leaves.ListFor(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(leaves),
		"leaves":  dto.NewLeaveResponses(leaves),
	})
}

// Get handles GET /leaves/:id.
func (h *LeavesHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	leave, err := h.leaves.Get(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "leave": dto.NewLeaveResponse(leave)})
}

// Update handles PUT /leaves/:id.
func (h *LeavesHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	in, err := leaveInput(c)
	if err != nil {
		return err
	}

	leave, err := h.leaves.Update(c.UserContext(), c.Params("id"), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Leave request updated successfully",
		"leave":   dto.NewLeaveResponse(leave),
	})
}

// History handles GET /leaves/:id/history.
func (h *LeavesHandler) History(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	entries, err := h.leaves.History(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(entries),
		"history": dto.NewLeaveHistoryResponses(entries),
	})
}

// Approve handles PUT /leaves/:id/approve.
func (h *LeavesHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	leave, err := h.leaves.Approve(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Leave request approved successfully",
		"leave":   dto.NewLeaveResponse(leave),
	})
}

// Reject handles PUT /leaves/:id/reject. The body is optional.
func (h *LeavesHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload()
		}
	}

	leave, err := h.leaves.Reject(c.UserContext(), c.Params("id"), actor, req.RejectionReason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Leave request rejected",
		"leave":   dto.NewLeaveResponse(leave),
	})
}

// Cancel handles DELETE /leaves/:id.
func (h *LeavesHandler) Cancel(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	leave, err := h.leaves.Cancel(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Leave request cancelled successfully",
		"leave":   dto.NewLeaveResponse(leave),
	})
}

func leaveInput(c *fiber.Ctx) (service.LeaveInput, error) {
	var req dto.LeaveRequestBody
	if err := c.BodyParser(&req); err != nil {
		return service.LeaveInput{}, invalidPayload()
	}
	if err := apperrors.ValidateStruct(req); err != nil {
		return service.LeaveInput{}, err
	}
	start, end, field, err := req.Dates()
	if err != nil {
		return service.LeaveInput{}, apperrors.NewValidationError("validation failed",
			map[string]any{field: "Invalid date"})
	}
	return service.LeaveInput{
		LeaveType:    req.LeaveType,
		StartDate:    start,
		EndDate:      end,
		NumberOfDays: req.NumberOfDays,
		Reason:       req.Reason,
		Attachment:   req.Attachment,
	}, nil
}
