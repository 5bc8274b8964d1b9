package services

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

type notificationStore interface {
	Create(ctx context.Context, input repository.CreateNotificationInput) (*models.Notification, error)
	MarkRead(ctx context.Context, userID int64, notificationIDs []int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	ListForUser(ctx context.Context, userID int64, onlyUnread bool, limit int, offset int) ([]models.Notification, int, error)
	GetPreferences(ctx context.Context, userID int64) (*models.NotificationPreference, error)
	UpsertPreferences(ctx context.Context, userID int64, input repository.NotificationPreferenceInput) (*models.NotificationPreference, error)
}

// NotificationService is the read/ack side of notifications plus the
// out-of-band email fan-out. In-app rows for booking and message events
// are written by those services inside their own transactions; this
// service only appends rows for callers outside a transaction (system
// announcements).
type NotificationService struct {
	repo     notificationStore
	userRepo userReader
	mailer   Mailer
}

func NewNotificationService(
	repo notificationStore,
	userRepo userReader,
	mailer Mailer,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		mailer:   mailer,
	}
}

func (s *NotificationService) Notify(
	ctx context.Context,
	input repository.CreateNotificationInput,
) (*models.Notification, error) {
	if input.UserID <= 0 || input.Title == "" {
		return nil, ErrInvalidInput
	}
	switch input.NotificationType {
	case models.NotificationTypeMessage,
		models.NotificationTypeBooking,
		models.NotificationTypePayment,
		models.NotificationTypeSystem:
	default:
		return nil, ErrInvalidInput
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	notification, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.DeliverAsync(input.UserID, input.NotificationType, input.Title, input.Message)
	return notification, nil
}

func (s *NotificationService) List(
	ctx context.Context,
	actorID int64,
	onlyUnread bool,
	page int,
	limit int,
) ([]models.Notification, int, error) {
	if page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.ListForUser(ctx, actorID, onlyUnread, limit, (page-1)*limit)
}

// MarkRead acknowledges the caller's notifications. Ids that do not
// exist or belong to someone else are skipped silently; the returned
// count only reflects rows that actually flipped, which makes repeated
// calls idempotent.
func (s *NotificationService) MarkRead(
	ctx context.Context,
	actorID int64,
	notificationIDs []int64,
) (int64, error) {
	return s.repo.MarkRead(ctx, actorID, notificationIDs)
}

func (s *NotificationService) UnreadCount(ctx context.Context, actorID int64) (int, error) {
	return s.repo.UnreadCount(ctx, actorID)
}

// GetPreferences returns the caller's delivery preferences, defaulting
// every channel to enabled when no row exists yet.
func (s *NotificationService) GetPreferences(
	ctx context.Context,
	actorID int64,
) (*models.NotificationPreference, error) {
	prefs, err := s.repo.GetPreferences(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.NotificationPreference{
				UserID:        actorID,
				EmailMessages: true,
				EmailBookings: true,
				EmailPayments: true,
				PushMessages:  true,
				PushBookings:  true,
			}, nil
		}
		return nil, err
	}
	return prefs, nil
}

func (s *NotificationService) UpdatePreferences(
	ctx context.Context,
	actorID int64,
	input repository.NotificationPreferenceInput,
) (*models.NotificationPreference, error) {
	return s.repo.UpsertPreferences(ctx, actorID, input)
}

// DeliverAsync sends the email copy of a notification in the background.
// Delivery is best effort: preference lookups and transport failures are
// logged and never reach the caller.
func (s *NotificationService) DeliverAsync(
	userID int64,
	notificationType string,
	title string,
	body string,
) {
	if s.mailer == nil {
		return
	}

	go func() {
		ctx := context.Background()

		prefs, err := s.GetPreferences(ctx, userID)
		if err != nil {
			log.Printf("notification email: load preferences for user %d: %v", userID, err)
			return
		}
		if !emailEnabledFor(prefs, notificationType) {
			return
		}

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("notification email: load user %d: %v", userID, err)
			return
		}

		if err := s.mailer.Send(user.Email, title, body); err != nil {
			log.Printf("notification email: send to %s: %v", user.Email, err)
		}
	}()
}

func emailEnabledFor(prefs *models.NotificationPreference, notificationType string) bool {
	switch notificationType {
	case models.NotificationTypeMessage:
		return prefs.EmailMessages
	case models.NotificationTypeBooking:
		return prefs.EmailBookings
	case models.NotificationTypePayment:
		return prefs.EmailPayments
	default:
		return true
	}
}
