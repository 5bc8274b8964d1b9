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
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

type bookingApplicationService interface {
	CreateBooking(ctx context.Context, studentID int64, role models.Role, input services.CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error)
	ListBookings(ctx context.Context, actorID int64, role models.Role, filter repository.BookingListFilter) ([]models.Booking, error)
	Confirm(ctx context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error)
	Cancel(ctx context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error)
	Complete(ctx context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error)
}

type BookingHandler struct {
	service bookingApplicationService
}

func NewBookingHandler(service bookingApplicationService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	InstructorID int64   `json:"instructor_id"`
	HomestayID   *int64  `json:"homestay_id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalAmount  float64 `json:"total_amount"`
	Notes        *string `json:"notes"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startDate, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be a valid RFC3339 timestamp"})
	}
	endDate, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be a valid RFC3339 timestamp"})
	}
	if req.Notes != nil && strings.TrimSpace(*req.Notes) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "notes must not be empty"})
	}

	booking, err := h.service.CreateBooking(c.Context(), actorID, role, services.CreateBookingInput{
		InstructorID: req.InstructorID,
		HomestayID:   req.HomestayID,
		StartDate:    startDate,
		EndDate:      endDate,
		TotalAmount:  req.TotalAmount,
		Notes:        req.Notes,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	bookings, err := h.service.ListBookings(c.Context(), actorID, role, repository.BookingListFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		Timeframe: timeframe,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookingID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := h.service.GetBooking(c.Context(), actorID, role, bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, h.service.Confirm)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.service.Cancel)
}

func (h *BookingHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.service.Complete)
}

func (h *BookingHandler) transition(
	c *fiber.Ctx,
	apply func(ctx context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error),
) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookingID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := apply(c.Context(), actorID, role, bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking conflicts with another booking"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking request"})
	}
}
