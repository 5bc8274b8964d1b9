package services

import (
	"context"
	"testing"
	"time"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type stubUserCounter struct {
	stubUserReader
	count int
}

func (s *stubUserCounter) CountByIDs(_ context.Context, _ []int64) (int, error) {
	return s.count, nil
}

func TestDedupeParticipants(t *testing.T) {
	ids := dedupeParticipants(1, []int64{2, 2, 1, 3, 0, -5})
	if len(ids) != 3 {
		t.Fatalf("expected 3 participants, got %d (%v)", len(ids), ids)
	}
	if ids[0] != 1 {
		t.Fatalf("expected creator first, got %v", ids)
	}
	if ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("expected request order preserved, got %v", ids)
	}
}

func TestDedupeParticipantsActorOnly(t *testing.T) {
	ids := dedupeParticipants(7, nil)
	if len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("expected only the creator, got %v", ids)
	}
}

func TestFormatChatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2026, 8, 26, 15, 30, 0, 0, loc)
	if got := FormatChatTimestamp(ts); got != "2026-08-26T12:30:00Z" {
		t.Fatalf("expected UTC RFC3339 timestamp, got %q", got)
	}
}

func TestCreateConversationRequiresTwoParticipants(t *testing.T) {
	service := NewMessagingService(nil, nil, nil, &stubUserCounter{}, nil)

	if _, err := service.CreateConversation(context.Background(), 1, nil, nil); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for empty participant list, got %v", err)
	}
	if _, err := service.CreateConversation(context.Background(), 1, []int64{1, 1}, nil); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput when only the creator remains, got %v", err)
	}
}

func TestCreateConversationRejectsUnknownParticipants(t *testing.T) {
	users := &stubUserCounter{count: 1}
	service := NewMessagingService(nil, nil, nil, users, nil)

	if _, err := service.CreateConversation(context.Background(), 1, []int64{2}, nil); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound on participant count mismatch, got %v", err)
	}
}

func TestGetOrCreateDirectValidatesOtherParty(t *testing.T) {
	users := &stubUserCounter{}
	service := NewMessagingService(nil, nil, nil, users, nil)

	if _, err := service.GetOrCreateDirect(context.Background(), 1, 0); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for zero id, got %v", err)
	}
	if _, err := service.GetOrCreateDirect(context.Background(), 1, 1); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for self conversation, got %v", err)
	}
	if _, err := service.GetOrCreateDirect(context.Background(), 1, 42); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for missing user, got %v", err)
	}
}

func TestSendMessageRejectsBadInput(t *testing.T) {
	service := NewMessagingService(nil, nil, nil, &stubUserCounter{}, nil)

	if _, err := service.SendMessage(context.Background(), 1, 0, "hello"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for bad conversation id, got %v", err)
	}
	if _, err := service.SendMessage(context.Background(), 1, 5, "   "); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for blank content, got %v", err)
	}
}

func TestListMessagesRejectsBadPaging(t *testing.T) {
	service := NewMessagingService(nil, nil, nil, &stubUserCounter{}, nil)

	if _, _, err := service.ListMessages(context.Background(), 1, 5, 0, 10); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for page 0, got %v", err)
	}
	if _, _, err := service.ListMessages(context.Background(), 1, 5, 1, 0); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for limit 0, got %v", err)
	}
	if _, _, err := service.ListMessages(context.Background(), 1, 0, 1, 10); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for bad conversation id, got %v", err)
	}
}

func TestMessageNotificationShape(t *testing.T) {
	message := &models.Message{ID: 11, ConversationID: 5, SenderID: 1, Content: "hi"}
	notification := messageNotification(message, "Alice", 2)

	if notification.UserID != 2 {
		t.Fatalf("expected recipient 2, got %d", notification.UserID)
	}
	if notification.NotificationType != models.NotificationTypeMessage {
		t.Fatalf("expected message type, got %q", notification.NotificationType)
	}
	if notification.Title != "New Message" {
		t.Fatalf("unexpected title %q", notification.Title)
	}
	if notification.RelatedObjectID == nil || *notification.RelatedObjectID != message.ID {
		t.Fatal("expected related object to be the message id")
	}
	if notification.RelatedContentType == nil || *notification.RelatedContentType != "Message" {
		t.Fatal("expected related content type Message")
	}
}
