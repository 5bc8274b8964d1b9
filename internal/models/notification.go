package models

import "time"

const (
	NotificationTypeMessage = "message"
	NotificationTypeBooking = "booking"
	NotificationTypePayment = "payment"
	NotificationTypeSystem  = "system"
)

type Notification struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	NotificationType   string    `json:"notification_type"`
	Title              string    `json:"title"`
	Message            string    `json:"message"`
	IsRead             bool      `json:"is_read"`
	RelatedObjectID    *int64    `json:"related_object_id"`
	RelatedContentType *string   `json:"related_content_type"`
	CreatedAt          time.Time `json:"created_at"`
}

// NotificationPreference gates out-of-band delivery per channel. In-app
// notification rows are always written regardless of these flags.
type NotificationPreference struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	EmailMessages bool      `json:"email_messages"`
	EmailBookings bool      `json:"email_bookings"`
	EmailPayments bool      `json:"email_payments"`
	PushMessages  bool      `json:"push_messages"`
	PushBookings  bool      `json:"push_bookings"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
