package repository

import (
	"context"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type CreateNotificationInput struct {
	UserID             int64
	NotificationType   string
	Title              string
	Message            string
	RelatedObjectID    *int64
	RelatedContentType *string
}

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(
	ctx context.Context,
	input CreateNotificationInput,
) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, notification_type, title, message, is_read, related_object_id, related_content_type)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
		RETURNING id, user_id, notification_type, title, message, is_read, related_object_id, related_content_type, created_at
	`
	var notification models.Notification
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.NotificationType,
		input.Title,
		input.Message,
		input.RelatedObjectID,
		input.RelatedContentType,
	).Scan(
		&notification.ID,
		&notification.UserID,
		&notification.NotificationType,
		&notification.Title,
		&notification.Message,
		&notification.IsRead,
		&notification.RelatedObjectID,
		&notification.RelatedContentType,
		&notification.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkRead flips the caller's own unread notifications among the given
// ids and reports how many rows changed. Foreign and missing ids are
// filtered out by the WHERE clause rather than treated as errors.
func (r *NotificationRepository) MarkRead(
	ctx context.Context,
	userID int64,
	notificationIDs []int64,
) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1
		  AND id = ANY($2)
		  AND is_read = FALSE
	`, userID, notificationIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepository) ListForUser(
	ctx context.Context,
	userID int64,
	onlyUnread bool,
	limit int,
	offset int,
) ([]models.Notification, int, error) {
	totalQuery := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
	`
	var total int
	if err := r.db.QueryRow(ctx, totalQuery, userID, onlyUnread).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, notification_type, title, message, is_read, related_object_id, related_content_type, created_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, userID, onlyUnread, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var notification models.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.NotificationType,
			&notification.Title,
			&notification.Message,
			&notification.IsRead,
			&notification.RelatedObjectID,
			&notification.RelatedContentType,
			&notification.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *NotificationRepository) GetPreferences(
	ctx context.Context,
	userID int64,
) (*models.NotificationPreference, error) {
	query := `
		SELECT id, user_id, email_messages, email_bookings, email_payments, push_messages, push_bookings, created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`
	var prefs models.NotificationPreference
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&prefs.ID,
		&prefs.UserID,
		&prefs.EmailMessages,
		&prefs.EmailBookings,
		&prefs.EmailPayments,
		&prefs.PushMessages,
		&prefs.PushBookings,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

type NotificationPreferenceInput struct {
	EmailMessages bool
	EmailBookings bool
	EmailPayments bool
	PushMessages  bool
	PushBookings  bool
}

func (r *NotificationRepository) UpsertPreferences(
	ctx context.Context,
	userID int64,
	input NotificationPreferenceInput,
) (*models.NotificationPreference, error) {
	query := `
		INSERT INTO notification_preferences (user_id, email_messages, email_bookings, email_payments, push_messages, push_bookings)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET
			email_messages = EXCLUDED.email_messages,
			email_bookings = EXCLUDED.email_bookings,
			email_payments = EXCLUDED.email_payments,
			push_messages = EXCLUDED.push_messages,
			push_bookings = EXCLUDED.push_bookings,
			updated_at = NOW()
		RETURNING id, user_id, email_messages, email_bookings, email_payments, push_messages, push_bookings, created_at, updated_at
	`
	var prefs models.NotificationPreference
	err := r.db.QueryRow(
		ctx,
		query,
		userID,
		input.EmailMessages,
		input.EmailBookings,
		input.EmailPayments,
		input.PushMessages,
		input.PushBookings,
	).Scan(
		&prefs.ID,
		&prefs.UserID,
		&prefs.EmailMessages,
		&prefs.EmailBookings,
		&prefs.EmailPayments,
		&prefs.PushMessages,
		&prefs.PushBookings,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}
