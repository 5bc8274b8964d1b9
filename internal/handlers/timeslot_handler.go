package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

type availabilityApplicationService interface {
	PublishSlot(ctx context.Context, actorID int64, role models.Role, start, end time.Time, recurring bool) (*models.TimeSlot, error)
	ListAvailable(ctx context.Context, now time.Time, instructorID int64) ([]models.TimeSlot, error)
	ListOwn(ctx context.Context, actorID int64, role models.Role) ([]models.TimeSlot, error)
	SetAvailability(ctx context.Context, actorID int64, role models.Role, slotID int64, available bool) (*models.TimeSlot, error)
	DeleteSlot(ctx context.Context, actorID int64, role models.Role, slotID int64) error
}

type TimeSlotHandler struct {
	service availabilityApplicationService
}

func NewTimeSlotHandler(service availabilityApplicationService) *TimeSlotHandler {
	return &TimeSlotHandler{service: service}
}

type publishSlotRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Recurring bool   `json:"recurring"`
}

type setAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

func (h *TimeSlotHandler) PublishSlot(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req publishSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_time must be a valid RFC3339 timestamp"})
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndTime))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be a valid RFC3339 timestamp"})
	}

	slot, err := h.service.PublishSlot(c.Context(), actorID, role, start, end, req.Recurring)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"time_slot": slot})
}

func (h *TimeSlotHandler) ListAvailable(c *fiber.Ctx) error {
	var instructorID int64
	if raw := strings.TrimSpace(c.Query("instructor_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
		}
		instructorID = parsed
	}

	slots, err := h.service.ListAvailable(c.Context(), time.Now().UTC(), instructorID)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"time_slots": slots})
}

func (h *TimeSlotHandler) ListOwn(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	slots, err := h.service.ListOwn(c.Context(), actorID, role)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"time_slots": slots})
}

func (h *TimeSlotHandler) SetAvailability(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	slotID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || slotID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid time slot id"})
	}

	var req setAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.IsAvailable == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "is_available is required"})
	}

	slot, err := h.service.SetAvailability(c.Context(), actorID, role, slotID, *req.IsAvailable)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"time_slot": slot})
}

func (h *TimeSlotHandler) DeleteSlot(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	slotID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || slotID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid time slot id"})
	}

	if err := h.service.DeleteSlot(c.Context(), actorID, role, slotID); err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func mapAvailabilityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Time slot not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process time slot request"})
	}
}
