package services

import (
	"context"
	"testing"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

func TestNotificationServiceMarkReadIsIdempotentAndFiltered(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationDispatcher(pool)

	userID := createTestAccount(t, ctx, pool, models.RoleStudent)
	otherID := createTestAccount(t, ctx, pool, models.RoleStudent)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID, otherID) })

	first, err := service.Notify(ctx, repository.CreateNotificationInput{
		UserID:           userID,
		NotificationType: models.NotificationTypeSystem,
		Title:            "Welcome",
		Message:          "Account created",
	})
	if err != nil {
		t.Fatalf("Notify first: %v", err)
	}
	second, err := service.Notify(ctx, repository.CreateNotificationInput{
		UserID:           userID,
		NotificationType: models.NotificationTypeSystem,
		Title:            "Reminder",
	})
	if err != nil {
		t.Fatalf("Notify second: %v", err)
	}
	foreign, err := service.Notify(ctx, repository.CreateNotificationInput{
		UserID:           otherID,
		NotificationType: models.NotificationTypeSystem,
		Title:            "Not yours",
	})
	if err != nil {
		t.Fatalf("Notify foreign: %v", err)
	}

	count, err := service.UnreadCount(ctx, userID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	// Foreign and missing ids are skipped, not errors.
	updated, err := service.MarkRead(ctx, userID, []int64{first.ID, second.ID, foreign.ID, 99999999})
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 rows flipped, got %d", updated)
	}

	again, err := service.MarkRead(ctx, userID, []int64{first.ID, second.ID, foreign.ID})
	if err != nil {
		t.Fatalf("MarkRead repeat: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected repeat to flip nothing, got %d", again)
	}

	count, err = service.UnreadCount(ctx, userID)
	if err != nil {
		t.Fatalf("UnreadCount after mark: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}

	otherCount, err := service.UnreadCount(ctx, otherID)
	if err != nil {
		t.Fatalf("UnreadCount other: %v", err)
	}
	if otherCount != 1 {
		t.Fatalf("expected other user's notification untouched, got %d unread", otherCount)
	}
}

func TestNotificationServicePreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationDispatcher(pool)

	userID := createTestAccount(t, ctx, pool, models.RoleStudent)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	// No row yet: every channel defaults to enabled.
	prefs, err := service.GetPreferences(ctx, userID)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if !prefs.EmailMessages || !prefs.PushBookings {
		t.Fatalf("expected defaults enabled, got %+v", prefs)
	}

	updated, err := service.UpdatePreferences(ctx, userID, repository.NotificationPreferenceInput{
		EmailMessages: false,
		EmailBookings: true,
		EmailPayments: true,
		PushMessages:  false,
		PushBookings:  true,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if updated.EmailMessages || updated.PushMessages {
		t.Fatalf("expected disabled channels persisted, got %+v", updated)
	}

	reloaded, err := service.GetPreferences(ctx, userID)
	if err != nil {
		t.Fatalf("GetPreferences reload: %v", err)
	}
	if reloaded.EmailMessages || !reloaded.EmailBookings {
		t.Fatalf("unexpected stored preferences %+v", reloaded)
	}
}
