package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

type stubChatService struct {
	listResult   []models.ConversationSummary
	listErr      error
	createResult *models.Conversation
	createErr    error
	directResult *models.Conversation
	directErr    error
	messages     []models.Message
	messagesErr  error
	total        int
	sendResult   *services.ChatDelivery
	sendErr      error

	lastActorID        int64
	lastParticipantIDs []int64
	lastTitle          *string
	lastOtherID        int64
	lastConversationID int64
	lastPage           int
	lastLimit          int
	lastContent        string
}

func (s *stubChatService) ListConversations(_ context.Context, actorID int64) ([]models.ConversationSummary, error) {
	s.lastActorID = actorID
	return s.listResult, s.listErr
}

func (s *stubChatService) CreateConversation(_ context.Context, actorID int64, participantIDs []int64, title *string) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastParticipantIDs = participantIDs
	s.lastTitle = title
	return s.createResult, s.createErr
}

func (s *stubChatService) GetOrCreateDirect(_ context.Context, actorID int64, otherID int64) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastOtherID = otherID
	return s.directResult, s.directErr
}

func (s *stubChatService) ListMessages(_ context.Context, actorID int64, conversationID int64, page int, limit int) ([]models.Message, int, error) {
	s.lastActorID = actorID
	s.lastConversationID = conversationID
	s.lastPage = page
	s.lastLimit = limit
	return s.messages, s.total, s.messagesErr
}

func (s *stubChatService) SendMessage(_ context.Context, actorID int64, conversationID int64, content string) (*services.ChatDelivery, error) {
	s.lastActorID = actorID
	s.lastConversationID = conversationID
	s.lastContent = content
	return s.sendResult, s.sendErr
}

func newChatTestApp(service *stubChatService, userID string) *fiber.App {
	handler := NewChatHandler(service, nil, "test-secret")

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", "STUDENT")
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/v1/conversations", handler.ListConversations)
	app.Post("/api/v1/conversations", handler.CreateConversation)
	app.Post("/api/v1/conversations/direct", handler.GetOrCreateDirect)
	app.Get("/api/v1/conversations/:id/messages", handler.GetMessages)
	app.Post("/api/v1/conversations/:id/messages", handler.SendMessage)
	return app
}

func TestCreateConversationForwardsParticipants(t *testing.T) {
	title := "Study group"
	service := &stubChatService{
		createResult: &models.Conversation{ID: 3, Title: &title, ParticipantIDs: []int64{42, 7, 9}},
	}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{
		"participant_ids": [7, 9],
		"title": "Study group"
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
	if service.lastActorID != 42 {
		t.Fatalf("expected actor 42, got %d", service.lastActorID)
	}
	if len(service.lastParticipantIDs) != 2 || service.lastParticipantIDs[0] != 7 {
		t.Fatalf("unexpected participants %v", service.lastParticipantIDs)
	}
	if service.lastTitle == nil || *service.lastTitle != "Study group" {
		t.Fatalf("expected title forwarded, got %v", service.lastTitle)
	}
}

func TestCreateConversationRejectsBlankTitle(t *testing.T) {
	service := &stubChatService{}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{
		"participant_ids": [7],
		"title": "   "
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

func TestGetOrCreateDirectReturnsConversation(t *testing.T) {
	service := &stubChatService{
		directResult: &models.Conversation{ID: 8, ParticipantIDs: []int64{42, 7}},
	}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/direct", strings.NewReader(`{"user_id": 7}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastOtherID != 7 {
		t.Fatalf("expected other id 7, got %d", service.lastOtherID)
	}

	var body struct {
		Conversation models.Conversation `json:"conversation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Conversation.ID != 8 {
		t.Fatalf("expected conversation 8, got %d", body.Conversation.ID)
	}
}

func TestGetOrCreateDirectMissingUserIsNotFound(t *testing.T) {
	service := &stubChatService{directErr: services.ErrUserNotFound}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/direct", strings.NewReader(`{"user_id": 999}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetMessagesClampsLimitAndBuildsPagination(t *testing.T) {
	service := &stubChatService{
		messages: []models.Message{{ID: 1, Content: "hi"}},
		total:    120,
	}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/5/messages?page=2&limit=500", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastConversationID != 5 || service.lastPage != 2 {
		t.Fatalf("unexpected call: conversation %d page %d", service.lastConversationID, service.lastPage)
	}
	if service.lastLimit != maxPageLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxPageLimit, service.lastLimit)
	}

	var body struct {
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Pagination.Total != 120 || body.Pagination.Page != 2 {
		t.Fatalf("unexpected pagination %+v", body.Pagination)
	}
}

func TestGetMessagesForbiddenForNonParticipant(t *testing.T) {
	service := &stubChatService{messagesErr: services.ErrForbidden}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/5/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestSendMessageReturnsCreatedMessage(t *testing.T) {
	service := &stubChatService{
		sendResult: &services.ChatDelivery{
			Conversation: &models.Conversation{ID: 5},
			Message:      &models.Message{ID: 31, ConversationID: 5, SenderID: 42, Content: "hello"},
			RecipientIDs: []int64{7},
		},
	}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/5/messages", strings.NewReader(`{"content": "hello"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastContent != "hello" || service.lastConversationID != 5 {
		t.Fatalf("unexpected call: %q on %d", service.lastContent, service.lastConversationID)
	}

	var body struct {
		Message models.Message `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Message.ID != 31 {
		t.Fatalf("expected message 31, got %d", body.Message.ID)
	}
}

func TestSendMessageRejectsBadConversationID(t *testing.T) {
	service := &stubChatService{}
	app := newChatTestApp(service, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/abc/messages", strings.NewReader(`{"content": "hello"}`))
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
