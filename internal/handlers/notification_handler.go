package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

type notificationApplicationService interface {
	List(ctx context.Context, actorID int64, onlyUnread bool, page int, limit int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, actorID int64, notificationIDs []int64) (int64, error)
	UnreadCount(ctx context.Context, actorID int64) (int, error)
	GetPreferences(ctx context.Context, actorID int64) (*models.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, actorID int64, input repository.NotificationPreferenceInput) (*models.NotificationPreference, error)
}

type NotificationHandler struct {
	service notificationApplicationService
}

func NewNotificationHandler(service notificationApplicationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type markReadRequest struct {
	NotificationIDs []int64 `json:"notification_ids"`
}

type updatePreferencesRequest struct {
	EmailMessages *bool `json:"email_messages"`
	EmailBookings *bool `json:"email_bookings"`
	EmailPayments *bool `json:"email_payments"`
	PushMessages  *bool `json:"push_messages"`
	PushBookings  *bool `json:"push_bookings"`
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	onlyUnread := c.QueryBool("unread", false)
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	notifications, total, err := h.service.List(c.Context(), actorID, onlyUnread, page, limit)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"pagination":    buildPaginationMeta(page, limit, total),
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := h.service.MarkRead(c.Context(), actorID, req.NotificationIDs)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{"updated": updated})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	count, err := h.service.UnreadCount(c.Context(), actorID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

func (h *NotificationHandler) GetPreferences(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	preferences, err := h.service.GetPreferences(c.Context(), actorID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{"preferences": preferences})
}

func (h *NotificationHandler) UpdatePreferences(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	// Omitted fields keep their current value.
	current, err := h.service.GetPreferences(c.Context(), actorID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	input := repository.NotificationPreferenceInput{
		EmailMessages: current.EmailMessages,
		EmailBookings: current.EmailBookings,
		EmailPayments: current.EmailPayments,
		PushMessages:  current.PushMessages,
		PushBookings:  current.PushBookings,
	}
	if req.EmailMessages != nil {
		input.EmailMessages = *req.EmailMessages
	}
	if req.EmailBookings != nil {
		input.EmailBookings = *req.EmailBookings
	}
	if req.EmailPayments != nil {
		input.EmailPayments = *req.EmailPayments
	}
	if req.PushMessages != nil {
		input.PushMessages = *req.PushMessages
	}
	if req.PushBookings != nil {
		input.PushBookings = *req.PushBookings
	}

	preferences, err := h.service.UpdatePreferences(c.Context(), actorID, input)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{"preferences": preferences})
}

func mapNotificationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process notification request"})
	}
}
