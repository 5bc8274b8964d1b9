package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

type stubBookingService struct {
	createResult     *models.Booking
	createErr        error
	getResult        *models.Booking
	getErr           error
	listResult       []models.Booking
	listErr          error
	transitionResult *models.Booking
	transitionErr    error

	lastActorID     int64
	lastRole        models.Role
	lastBookingID   int64
	lastCreateInput services.CreateBookingInput
	lastListFilter  repository.BookingListFilter
	lastTransition  string
}

func (s *stubBookingService) CreateBooking(_ context.Context, studentID int64, role models.Role, input services.CreateBookingInput) (*models.Booking, error) {
	s.lastActorID = studentID
	s.lastRole = role
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubBookingService) GetBooking(_ context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	return s.getResult, s.getErr
}

func (s *stubBookingService) ListBookings(_ context.Context, actorID int64, role models.Role, filter repository.BookingListFilter) ([]models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listErr
}

func (s *stubBookingService) Confirm(_ context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	s.lastTransition = "confirm"
	return s.transitionResult, s.transitionErr
}

func (s *stubBookingService) Cancel(_ context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	s.lastTransition = "cancel"
	return s.transitionResult, s.transitionErr
}

func (s *stubBookingService) Complete(_ context.Context, actorID int64, role models.Role, bookingID int64) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	s.lastTransition = "complete"
	return s.transitionResult, s.transitionErr
}

func newBookingTestApp(service *stubBookingService, role, userID string) *fiber.App {
	handler := NewBookingHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/bookings", handler.CreateBooking)
	app.Get("/api/v1/bookings", handler.ListBookings)
	app.Get("/api/v1/bookings/:id", handler.GetBooking)
	app.Post("/api/v1/bookings/:id/confirm", handler.Confirm)
	app.Post("/api/v1/bookings/:id/cancel", handler.Cancel)
	app.Post("/api/v1/bookings/:id/complete", handler.Complete)
	return app
}

func TestCreateBookingReturnsCreatedBooking(t *testing.T) {
	service := &stubBookingService{
		createResult: &models.Booking{
			ID:           91,
			StudentID:    42,
			InstructorID: 7,
			Status:       models.BookingStatusPending,
			TotalAmount:  120,
		},
	}
	app := newBookingTestApp(service, "STUDENT", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"instructor_id": 7,
		"start_date": "2030-03-15T09:00:00Z",
		"end_date": "2030-03-15T11:00:00Z",
		"total_amount": 120
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 || service.lastRole != models.RoleStudent {
		t.Fatalf("unexpected actor %d role %q", service.lastActorID, service.lastRole)
	}
	if service.lastCreateInput.InstructorID != 7 {
		t.Fatalf("expected instructor 7, got %d", service.lastCreateInput.InstructorID)
	}
	wantStart := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	if !service.lastCreateInput.StartDate.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, service.lastCreateInput.StartDate)
	}
}

func TestCreateBookingRejectsBadTimestamps(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "STUDENT", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"instructor_id": 7,
		"start_date": "tomorrow",
		"end_date": "2030-03-15T11:00:00Z"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateBookingForbiddenForUnknownRole(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "visitor", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"instructor_id": 7,
		"start_date": "2030-03-15T09:00:00Z",
		"end_date": "2030-03-15T11:00:00Z"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestListBookingsPassesStatusAndTimeframe(t *testing.T) {
	service := &stubBookingService{
		listResult: []models.Booking{{ID: 5, Status: models.BookingStatusConfirmed}},
	}
	app := newBookingTestApp(service, "INSTRUCTOR", "9")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=confirmed&timeframe=upcoming", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != models.RoleInstructor {
		t.Fatalf("expected instructor role, got %q", service.lastRole)
	}
	if service.lastListFilter.Status != "confirmed" || service.lastListFilter.Timeframe != "upcoming" {
		t.Fatalf("unexpected filter: %+v", service.lastListFilter)
	}
}

func TestListBookingsRejectsUnknownTimeframe(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "STUDENT", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?timeframe=yesterday", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetBookingReturnsNotFound(t *testing.T) {
	service := &stubBookingService{getErr: pgx.ErrNoRows}
	app := newBookingTestApp(service, "STUDENT", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestConfirmReturnsUnprocessableForInvalidTransition(t *testing.T) {
	service := &stubBookingService{transitionErr: services.ErrInvalidStateTransition}
	app := newBookingTestApp(service, "INSTRUCTOR", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/55/confirm", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastBookingID != 55 || service.lastTransition != "confirm" {
		t.Fatalf("expected confirm on 55, got %s on %d", service.lastTransition, service.lastBookingID)
	}
}

func TestCancelReturnsUpdatedBooking(t *testing.T) {
	service := &stubBookingService{
		transitionResult: &models.Booking{ID: 55, Status: models.BookingStatusCancelled},
	}
	app := newBookingTestApp(service, "STUDENT", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/55/cancel", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Booking.Status != models.BookingStatusCancelled {
		t.Fatalf("expected cancelled booking, got %q", body.Booking.Status)
	}
}

func TestMapBookingErrorDefaultsToInternalServerError(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapBookingError(c, errors.New("boom"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
