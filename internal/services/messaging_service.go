package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

type userCounter interface {
	userReader
	CountByIDs(ctx context.Context, ids []int64) (int, error)
}

type MessagingService struct {
	db               *pgxpool.Pool
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
	userRepo         userCounter
	dispatcher       emailDispatcher
}

// ChatDelivery carries everything the realtime layer needs to push a
// freshly committed message to its recipients.
type ChatDelivery struct {
	Conversation *models.Conversation
	Message      *models.Message
	RecipientIDs []int64
}

func NewMessagingService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	userRepo userCounter,
	dispatcher emailDispatcher,
) *MessagingService {
	return &MessagingService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		dispatcher:       dispatcher,
	}
}

func (s *MessagingService) ListConversations(
	ctx context.Context,
	actorID int64,
) ([]models.ConversationSummary, error) {
	return s.conversationRepo.ListForParticipant(ctx, actorID)
}

// CreateConversation starts a conversation with the given participants.
// The creator is always part of the set, whether or not the request
// listed them.
func (s *MessagingService) CreateConversation(
	ctx context.Context,
	actorID int64,
	participantIDs []int64,
	title *string,
) (*models.Conversation, error) {
	ids := dedupeParticipants(actorID, participantIDs)
	if len(ids) < 2 {
		return nil, ErrInvalidInput
	}

	count, err := s.userRepo.CountByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if count != len(ids) {
		return nil, ErrUserNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)
	conversation, err := txConversationRepo.Create(ctx, title, ids)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return conversation, nil
}

// GetOrCreateDirect finds the existing two-person conversation between
// the actor and the other user, or creates one titled with the other
// participant's name. When duplicates exist the most recently created
// one wins, so repeated calls converge on the same conversation.
func (s *MessagingService) GetOrCreateDirect(
	ctx context.Context,
	actorID int64,
	otherID int64,
) (*models.Conversation, error) {
	if otherID <= 0 || otherID == actorID {
		return nil, ErrInvalidInput
	}

	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	conversation, err := s.conversationRepo.FindDirect(ctx, actorID, otherID)
	if err == nil {
		conversation.ParticipantIDs = []int64{actorID, otherID}
		return conversation, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	title := other.Name
	return s.CreateConversation(ctx, actorID, []int64{otherID}, &title)
}

// SendMessage appends a message and applies the platform's historical
// read side effect: the sender's new message marks every *other*
// participant's unread messages in the conversation as read. The
// notification rows for the recipients are written in the same
// transaction as the message itself.
func (s *MessagingService) SendMessage(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	content string,
) (*ChatDelivery, error) {
	if conversationID <= 0 {
		return nil, ErrInvalidInput
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	participantIDs, err := s.conversationRepo.ListParticipantIDs(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	recipientIDs := make([]int64, 0, len(participantIDs))
	for _, participantID := range participantIDs {
		if participantID != actorID {
			recipientIDs = append(recipientIDs, participantID)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	message, err := txMessageRepo.Create(ctx, conversationID, actorID, trimmed)
	if err != nil {
		return nil, err
	}

	if _, err := txMessageRepo.MarkConversationRead(ctx, conversationID, actorID); err != nil {
		return nil, err
	}

	if err := txConversationRepo.Touch(ctx, conversationID); err != nil {
		return nil, err
	}

	notifications := make([]repository.CreateNotificationInput, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		notification := messageNotification(message, sender.Name, recipientID)
		if _, err := txNotificationRepo.Create(ctx, notification); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	for _, notification := range notifications {
		s.dispatcher.DeliverAsync(
			notification.UserID,
			notification.NotificationType,
			notification.Title,
			notification.Message,
		)
	}

	return &ChatDelivery{
		Conversation: conversation,
		Message:      message,
		RecipientIDs: recipientIDs,
	}, nil
}

// ListMessages returns a page of the conversation's messages in creation
// order. A fresh request restarts the sequence from the beginning; this
// is a snapshot read, not a subscription.
func (s *MessagingService) ListMessages(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	page int,
	limit int,
) ([]models.Message, int, error) {
	if conversationID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	if _, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrForbidden
		}
		return nil, 0, err
	}

	return s.messageRepo.ListByConversation(ctx, conversationID, limit, (page-1)*limit)
}

func dedupeParticipants(actorID int64, participantIDs []int64) []int64 {
	seen := map[int64]struct{}{actorID: {}}
	ids := []int64{actorID}
	for _, id := range participantIDs {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
