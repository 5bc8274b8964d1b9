package services

import (
	"fmt"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

// BookingEventKind enumerates the booking transitions that fan out as
// notifications.
type BookingEventKind string

const (
	BookingCreated   BookingEventKind = "booking.created"
	BookingConfirmed BookingEventKind = "booking.confirmed"
	BookingCancelled BookingEventKind = "booking.cancelled"
	BookingCompleted BookingEventKind = "booking.completed"
)

// BookingEvent is the domain event emitted by the booking service. The
// notification row derived from it is written in the same transaction as
// the booking mutation; only the email copy goes out after commit.
type BookingEvent struct {
	Kind      BookingEventKind
	Booking   *models.Booking
	ActorID   int64
	ActorName string
}

func bookingEventKindFor(status string) BookingEventKind {
	switch status {
	case models.BookingStatusConfirmed:
		return BookingConfirmed
	case models.BookingStatusCancelled:
		return BookingCancelled
	case models.BookingStatusCompleted:
		return BookingCompleted
	default:
		return BookingCreated
	}
}

// Recipient returns the user the event should alert: the counterparty of
// whoever performed the action.
func (e BookingEvent) Recipient() int64 {
	if e.ActorID == e.Booking.StudentID {
		return e.Booking.InstructorID
	}
	return e.Booking.StudentID
}

// Notification maps the event onto an in-app notification row.
func (e BookingEvent) Notification() repository.CreateNotificationInput {
	bookingID := e.Booking.ID
	contentType := "Booking"

	var title, body string
	switch e.Kind {
	case BookingCreated:
		title = "New Booking Request"
		body = fmt.Sprintf("You have a new booking request from %s", e.ActorName)
	case BookingConfirmed:
		title = "Booking Confirmed"
		body = fmt.Sprintf("%s confirmed your booking", e.ActorName)
	case BookingCancelled:
		title = "Booking Cancelled"
		body = fmt.Sprintf("%s cancelled the booking", e.ActorName)
	case BookingCompleted:
		title = "Booking Completed"
		body = fmt.Sprintf("%s marked the booking as completed", e.ActorName)
	}

	return repository.CreateNotificationInput{
		UserID:             e.Recipient(),
		NotificationType:   models.NotificationTypeBooking,
		Title:              title,
		Message:            body,
		RelatedObjectID:    &bookingID,
		RelatedContentType: &contentType,
	}
}

// messageNotification maps a delivered chat message onto a notification
// row for one recipient.
func messageNotification(
	message *models.Message,
	senderName string,
	recipientID int64,
) repository.CreateNotificationInput {
	messageID := message.ID
	contentType := "Message"
	return repository.CreateNotificationInput{
		UserID:             recipientID,
		NotificationType:   models.NotificationTypeMessage,
		Title:              "New Message",
		Message:            fmt.Sprintf("You have a new message from %s", senderName),
		RelatedObjectID:    &messageID,
		RelatedContentType: &contentType,
	}
}
