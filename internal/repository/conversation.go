package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ConversationRepository reads and appends to the conversations of a single channel.
type ConversationRepository interface {
	Channel() models.Channel
	GetAllConversations(ctx context.Context) ([]*models.Conversation, error)
	// AppendMessage adds msg to the end of the contact's conversation,
	// creating the conversation if needed.
	AppendMessage(ctx context.Context, contactExternalID string, msg models.Message) error
}

type conversationRepository struct {
	db      *sqlx.DB
	channel models.Channel
	table   string
	logger  *zap.Logger
}

func NewConversationRepository(db *sqlx.DB, channel models.Channel, logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		db:      db,
		channel: channel,
		table:   channel.ConversationsTable(),
		logger:  logger.With(zap.String("channel", string(channel))),
	}
}

func (r *conversationRepository) Channel() models.Channel {
	return r.channel
}

func (r *conversationRepository) GetAllConversations(ctx context.Context) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	query := fmt.Sprintf(`SELECT id, contact_external_id, messages, updated_at FROM %s ORDER BY id`, r.table)
	err := r.db.SelectContext(ctx, &conversations, query)
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *conversationRepository) AppendMessage(ctx context.Context, contactExternalID string, msg models.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	msg.Timestamp = msg.Timestamp.UTC()
	now := time.Now().UTC()

	var conversation models.Conversation
	query := fmt.Sprintf(`SELECT id, contact_external_id, messages, updated_at FROM %s WHERE contact_external_id = ?`, r.table)
	err = tx.GetContext(ctx, &conversation, r.db.Rebind(query), contactExternalID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := fmt.Sprintf(`INSERT INTO %s (contact_external_id, messages, updated_at) VALUES (?, ?, ?)`, r.table)
		_, err = tx.ExecContext(ctx, r.db.Rebind(insert), contactExternalID, models.MessageList{msg}, now)
	case err != nil:
		return err
	default:
		conversation.Messages = append(conversation.Messages, msg)
		update := fmt.Sprintf(`UPDATE %s SET messages = ?, updated_at = ? WHERE id = ?`, r.table)
		_, err = tx.ExecContext(ctx, r.db.Rebind(update), conversation.Messages, now, conversation.ID)
	}
	if err != nil {
		r.logger.Error("Failed to append message", zap.String("contact_external_id", contactExternalID), zap.Error(err))
		return err
	}

	return tx.Commit()
}
