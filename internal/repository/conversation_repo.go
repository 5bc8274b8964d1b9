package repository

import (
	"context"
	"database/sql"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a conversation and its participant rows. Callers that
// need atomicity pass a transaction as the DBTX.
func (r *ConversationRepository) Create(
	ctx context.Context,
	title *string,
	participantIDs []int64,
) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (title)
		VALUES ($1)
		RETURNING id, title, last_message_at, created_at, updated_at
	`
	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, title).Scan(
		&conversation.ID,
		&conversation.Title,
		&conversation.LastMessageAt,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, participantID := range participantIDs {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, conversation.ID, participantID); err != nil {
			return nil, err
		}
	}

	conversation.ParticipantIDs = participantIDs
	return &conversation, nil
}

// FindDirect returns the newest conversation whose participant set is
// exactly {userA, userB}. The created_at DESC, id DESC order makes the
// pick deterministic when duplicates exist.
func (r *ConversationRepository) FindDirect(
	ctx context.Context,
	userA int64,
	userB int64,
) (*models.Conversation, error) {
	query := `
		SELECT c.id, c.title, c.last_message_at, c.created_at, c.updated_at
		FROM conversations c
		WHERE EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = c.id AND user_id = $1
		)
		AND EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = c.id AND user_id = $2
		)
		AND (
			SELECT COUNT(*) FROM conversation_participants
			WHERE conversation_id = c.id
		) = 2
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT 1
	`
	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, userA, userB).Scan(
		&conversation.ID,
		&conversation.Title,
		&conversation.LastMessageAt,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) GetByIDForParticipant(
	ctx context.Context,
	conversationID int64,
	participantID int64,
) (*models.Conversation, error) {
	query := `
		SELECT c.id, c.title, c.last_message_at, c.created_at, c.updated_at
		FROM conversations c
		WHERE c.id = $1
		  AND EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = c.id AND user_id = $2
		  )
	`
	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, conversationID, participantID).Scan(
		&conversation.ID,
		&conversation.Title,
		&conversation.LastMessageAt,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) ListParticipantIDs(
	ctx context.Context,
	conversationID int64,
) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id
		FROM conversation_participants
		WHERE conversation_id = $1
		ORDER BY user_id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	participantID int64,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id,
			c.title,
			c.last_message_at,
			c.created_at,
			c.updated_at,
			lm.id,
			lm.conversation_id,
			lm.sender_id,
			lm.content,
			lm.is_read,
			lm.created_at,
			COALESCE(uc.unread_count, 0)
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.user_id = $1
		LEFT JOIN LATERAL (
			SELECT id, conversation_id, sender_id, content, is_read, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages
			WHERE conversation_id = c.id
			  AND sender_id <> $1
			  AND is_read = FALSE
		) uc ON TRUE
		ORDER BY c.last_message_at DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var messageID sql.NullInt64
		var messageConversationID sql.NullInt64
		var messageSenderID sql.NullInt64
		var messageContent sql.NullString
		var messageIsRead sql.NullBool
		var messageCreatedAt sql.NullTime

		if err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&summary.LastMessageAt,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&messageID,
			&messageConversationID,
			&messageSenderID,
			&messageContent,
			&messageIsRead,
			&messageCreatedAt,
			&summary.UnreadCount,
		); err != nil {
			return nil, err
		}

		if messageID.Valid {
			summary.LastMessage = &models.Message{
				ID:             messageID.Int64,
				ConversationID: messageConversationID.Int64,
				SenderID:       messageSenderID.Int64,
				Content:        messageContent.String,
				IsRead:         messageIsRead.Bool,
				CreatedAt:      messageCreatedAt.Time,
			}
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *ConversationRepository) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}
