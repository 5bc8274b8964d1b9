package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

type stubAvailabilityService struct {
	publishResult *models.TimeSlot
	publishErr    error
	listResult    []models.TimeSlot
	listErr       error
	setResult     *models.TimeSlot
	setErr        error
	deleteErr     error

	lastActorID      int64
	lastRole         models.Role
	lastStart        time.Time
	lastEnd          time.Time
	lastRecurring    bool
	lastInstructorID int64
	lastSlotID       int64
	lastAvailable    bool
}

func (s *stubAvailabilityService) PublishSlot(_ context.Context, actorID int64, role models.Role, start, end time.Time, recurring bool) (*models.TimeSlot, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastStart = start
	s.lastEnd = end
	s.lastRecurring = recurring
	return s.publishResult, s.publishErr
}

func (s *stubAvailabilityService) ListAvailable(_ context.Context, _ time.Time, instructorID int64) ([]models.TimeSlot, error) {
	s.lastInstructorID = instructorID
	return s.listResult, s.listErr
}

func (s *stubAvailabilityService) ListOwn(_ context.Context, actorID int64, role models.Role) ([]models.TimeSlot, error) {
	s.lastActorID = actorID
	s.lastRole = role
	return s.listResult, s.listErr
}

func (s *stubAvailabilityService) SetAvailability(_ context.Context, actorID int64, role models.Role, slotID int64, available bool) (*models.TimeSlot, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSlotID = slotID
	s.lastAvailable = available
	return s.setResult, s.setErr
}

func (s *stubAvailabilityService) DeleteSlot(_ context.Context, actorID int64, role models.Role, slotID int64) error {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSlotID = slotID
	return s.deleteErr
}

func newTimeSlotTestApp(service *stubAvailabilityService, role, userID string) *fiber.App {
	handler := NewTimeSlotHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/time-slots", handler.PublishSlot)
	app.Get("/api/v1/time-slots", handler.ListAvailable)
	app.Get("/api/v1/time-slots/mine", handler.ListOwn)
	app.Put("/api/v1/time-slots/:id/availability", handler.SetAvailability)
	app.Delete("/api/v1/time-slots/:id", handler.DeleteSlot)
	return app
}

func TestPublishSlotReturnsCreatedSlot(t *testing.T) {
	service := &stubAvailabilityService{
		publishResult: &models.TimeSlot{ID: 3, InstructorID: 9, IsAvailable: true, Recurring: true},
	}
	app := newTimeSlotTestApp(service, "INSTRUCTOR", "9")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/time-slots", strings.NewReader(`{
		"start_time": "2030-03-15T09:00:00Z",
		"end_time": "2030-03-15T11:00:00Z",
		"recurring": true
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
	if service.lastActorID != 9 || service.lastRole != models.RoleInstructor {
		t.Fatalf("unexpected actor %d role %q", service.lastActorID, service.lastRole)
	}
	if !service.lastRecurring {
		t.Fatal("expected recurring forwarded")
	}
	wantStart := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	if !service.lastStart.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, service.lastStart)
	}
}

func TestPublishSlotRejectsBadTimestamp(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newTimeSlotTestApp(service, "INSTRUCTOR", "9")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/time-slots", strings.NewReader(`{
		"start_time": "next tuesday",
		"end_time": "2030-03-15T11:00:00Z"
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

func TestListAvailableForwardsInstructorFilter(t *testing.T) {
	service := &stubAvailabilityService{
		listResult: []models.TimeSlot{{ID: 1, InstructorID: 9, IsAvailable: true}},
	}
	app := newTimeSlotTestApp(service, "STUDENT", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/time-slots?instructor_id=9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastInstructorID != 9 {
		t.Fatalf("expected instructor filter 9, got %d", service.lastInstructorID)
	}
}

func TestListAvailableRejectsBadInstructorFilter(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newTimeSlotTestApp(service, "STUDENT", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/time-slots?instructor_id=-3", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSetAvailabilityRequiresFlag(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newTimeSlotTestApp(service, "INSTRUCTOR", "9")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/time-slots/3/availability", strings.NewReader(`{}`))
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

func TestSetAvailabilityForwardsFlag(t *testing.T) {
	service := &stubAvailabilityService{
		setResult: &models.TimeSlot{ID: 3, InstructorID: 9, IsAvailable: false},
	}
	app := newTimeSlotTestApp(service, "INSTRUCTOR", "9")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/time-slots/3/availability", strings.NewReader(`{"is_available": false}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSlotID != 3 || service.lastAvailable {
		t.Fatalf("expected slot 3 closed, got slot %d available %v", service.lastSlotID, service.lastAvailable)
	}
}

func TestDeleteSlotReturnsNoContent(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newTimeSlotTestApp(service, "INSTRUCTOR", "9")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/time-slots/3", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastSlotID != 3 {
		t.Fatalf("expected delete on slot 3, got %d", service.lastSlotID)
	}
}

func TestDeleteSlotMissingReturnsNotFound(t *testing.T) {
	service := &stubAvailabilityService{deleteErr: services.ErrNotFound}
	app := newTimeSlotTestApp(service, "INSTRUCTOR", "9")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/time-slots/99", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
