package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

func newIntegrationMessagingService(pool *pgxpool.Pool) *MessagingService {
	return NewMessagingService(
		pool,
		repository.NewConversationRepository(pool),
		repository.NewMessageRepository(pool),
		repository.NewUserRepository(pool),
		newIntegrationDispatcher(pool),
	)
}

func cleanupConversations(t *testing.T, ctx context.Context, pool *pgxpool.Pool, conversationIDs ...int64) {
	t.Helper()

	if len(conversationIDs) == 0 {
		return
	}
	if _, err := pool.Exec(ctx, "DELETE FROM conversations WHERE id = ANY($1)", conversationIDs); err != nil {
		t.Fatalf("cleanup conversations: %v", err)
	}
}

func TestMessagingServiceDirectConversationConverges(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationMessagingService(pool)

	aliceID := createTestAccount(t, ctx, pool, models.RoleStudent)
	bobID := createTestAccount(t, ctx, pool, models.RoleInstructor)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, aliceID, bobID) })

	first, err := service.GetOrCreateDirect(ctx, aliceID, bobID)
	if err != nil {
		t.Fatalf("GetOrCreateDirect first call: %v", err)
	}
	t.Cleanup(func() { cleanupConversations(t, ctx, pool, first.ID) })

	second, err := service.GetOrCreateDirect(ctx, aliceID, bobID)
	if err != nil {
		t.Fatalf("GetOrCreateDirect second call: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected repeated calls to converge on conversation %d, got %d", first.ID, second.ID)
	}

	// The other side resolves to the same conversation.
	fromBob, err := service.GetOrCreateDirect(ctx, bobID, aliceID)
	if err != nil {
		t.Fatalf("GetOrCreateDirect from other side: %v", err)
	}
	if fromBob.ID != first.ID {
		t.Fatalf("expected both sides to share conversation %d, got %d", first.ID, fromBob.ID)
	}
}

func TestMessagingServiceSendMarksCounterpartyMessagesRead(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationMessagingService(pool)

	aliceID := createTestAccount(t, ctx, pool, models.RoleStudent)
	bobID := createTestAccount(t, ctx, pool, models.RoleInstructor)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, aliceID, bobID) })

	conversation, err := service.GetOrCreateDirect(ctx, aliceID, bobID)
	if err != nil {
		t.Fatalf("GetOrCreateDirect: %v", err)
	}
	t.Cleanup(func() { cleanupConversations(t, ctx, pool, conversation.ID) })

	fromBob, err := service.SendMessage(ctx, bobID, conversation.ID, "hello")
	if err != nil {
		t.Fatalf("SendMessage from bob: %v", err)
	}
	if fromBob.Message.IsRead {
		t.Fatal("expected bob's message to start unread")
	}
	if len(fromBob.RecipientIDs) != 1 || fromBob.RecipientIDs[0] != aliceID {
		t.Fatalf("expected alice as sole recipient, got %v", fromBob.RecipientIDs)
	}

	// Alice replying marks bob's message read in the same transaction.
	if _, err := service.SendMessage(ctx, aliceID, conversation.ID, "hi back"); err != nil {
		t.Fatalf("SendMessage from alice: %v", err)
	}

	messages, total, err := service.ListMessages(ctx, aliceID, conversation.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if total != 2 || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d (total %d)", len(messages), total)
	}
	if messages[0].Content != "hello" || messages[1].Content != "hi back" {
		t.Fatalf("expected ascending creation order, got %q then %q", messages[0].Content, messages[1].Content)
	}
	if !messages[0].IsRead {
		t.Fatal("expected bob's message marked read after alice replied")
	}
	if messages[0].ReadAt == nil {
		t.Fatal("expected read_at stamped on bob's message")
	}
	if messages[1].IsRead {
		t.Fatal("expected alice's reply to remain unread for bob")
	}
}

func TestMessagingServiceSendWritesRecipientNotifications(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationMessagingService(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	aliceID := createTestAccount(t, ctx, pool, models.RoleStudent)
	bobID := createTestAccount(t, ctx, pool, models.RoleInstructor)
	caraID := createTestAccount(t, ctx, pool, models.RoleStudent)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, aliceID, bobID, caraID) })

	title := "Study group"
	conversation, err := service.CreateConversation(ctx, aliceID, []int64{bobID, caraID}, &title)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	t.Cleanup(func() { cleanupConversations(t, ctx, pool, conversation.ID) })

	delivery, err := service.SendMessage(ctx, aliceID, conversation.ID, "welcome everyone")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(delivery.RecipientIDs) != 2 {
		t.Fatalf("expected 2 recipients, got %v", delivery.RecipientIDs)
	}

	for _, recipientID := range []int64{bobID, caraID} {
		notifications, _, err := notificationRepo.ListForUser(ctx, recipientID, true, 10, 0)
		if err != nil {
			t.Fatalf("ListForUser %d: %v", recipientID, err)
		}
		if len(notifications) != 1 || notifications[0].Title != "New Message" {
			t.Fatalf("expected message notification for %d, got %+v", recipientID, notifications)
		}
		if notifications[0].NotificationType != models.NotificationTypeMessage {
			t.Fatalf("expected message type, got %q", notifications[0].NotificationType)
		}
	}

	senderNotifications, _, err := notificationRepo.ListForUser(ctx, aliceID, true, 10, 0)
	if err != nil {
		t.Fatalf("ListForUser sender: %v", err)
	}
	if len(senderNotifications) != 0 {
		t.Fatalf("expected no self notification, got %+v", senderNotifications)
	}
}

func TestMessagingServiceConversationSummaries(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationMessagingService(pool)

	aliceID := createTestAccount(t, ctx, pool, models.RoleStudent)
	bobID := createTestAccount(t, ctx, pool, models.RoleInstructor)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, aliceID, bobID) })

	conversation, err := service.GetOrCreateDirect(ctx, aliceID, bobID)
	if err != nil {
		t.Fatalf("GetOrCreateDirect: %v", err)
	}
	t.Cleanup(func() { cleanupConversations(t, ctx, pool, conversation.ID) })

	if _, err := service.SendMessage(ctx, bobID, conversation.ID, fmt.Sprintf("hi %d", aliceID)); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	summaries, err := service.ListConversations(ctx, aliceID)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(summaries))
	}
	summary := summaries[0]
	if summary.Conversation.ID != conversation.ID {
		t.Fatalf("expected conversation %d, got %d", conversation.ID, summary.Conversation.ID)
	}
	if summary.UnreadCount != 1 {
		t.Fatalf("expected 1 unread message, got %d", summary.UnreadCount)
	}
	if summary.LastMessage == nil || summary.LastMessage.SenderID != bobID {
		t.Fatalf("expected bob's message as last, got %+v", summary.LastMessage)
	}

	// A non-participant sees nothing and cannot post.
	outsiderID := createTestAccount(t, ctx, pool, models.RoleStudent)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, outsiderID) })

	outsiderSummaries, err := service.ListConversations(ctx, outsiderID)
	if err != nil {
		t.Fatalf("ListConversations outsider: %v", err)
	}
	if len(outsiderSummaries) != 0 {
		t.Fatalf("expected empty listing for outsider, got %+v", outsiderSummaries)
	}
	if _, err := service.SendMessage(ctx, outsiderID, conversation.ID, "let me in"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}
	if _, _, err := service.ListMessages(ctx, outsiderID, conversation.ID, 1, 10); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for outsider listing, got %v", err)
	}
}
