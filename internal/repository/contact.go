package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ContactRepository reads and writes the contacts of a single channel.
type ContactRepository interface {
	Channel() models.Channel
	// CountContacts counts contacts created at or after since. A zero since
	// counts every contact.
	CountContacts(ctx context.Context, since time.Time) (int, error)
	GetAllContacts(ctx context.Context) ([]*models.Contact, error)
	UpsertContact(ctx context.Context, contact *models.Contact) error
}

type contactRepository struct {
	db      *sqlx.DB
	channel models.Channel
	table   string
	logger  *zap.Logger
}

func NewContactRepository(db *sqlx.DB, channel models.Channel, logger *zap.Logger) ContactRepository {
	return &contactRepository{
		db:      db,
		channel: channel,
		table:   channel.ContactsTable(),
		logger:  logger.With(zap.String("channel", string(channel))),
	}
}

func (r *contactRepository) Channel() models.Channel {
	return r.channel
}

func (r *contactRepository) CountContacts(ctx context.Context, since time.Time) (int, error) {
	var count int
	if since.IsZero() {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)
		err := r.db.GetContext(ctx, &count, query)
		return count, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE created_at >= ?`, r.table)
	err := r.db.GetContext(ctx, &count, r.db.Rebind(query), since.UTC())
	return count, err
}

func (r *contactRepository) GetAllContacts(ctx context.Context) ([]*models.Contact, error) {
	var contacts []*models.Contact
	query := fmt.Sprintf(`
		SELECT
			id,
			external_id,
			name,
			COALESCE(status, '') AS status,
			tags,
			COALESCE(product_interest, '') AS product_interest,
			created_at,
			last_message_at
		FROM %s
		ORDER BY id
	`, r.table)
	err := r.db.SelectContext(ctx, &contacts, query)
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepository) UpsertContact(ctx context.Context, contact *models.Contact) error {
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (external_id, name, status, tags, product_interest, created_at, last_message_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			tags = excluded.tags,
			product_interest = excluded.product_interest,
			last_message_at = excluded.last_message_at
		RETURNING id
	`, r.table)

	var lastMessageAt *time.Time
	if contact.LastMessageAt != nil {
		t := contact.LastMessageAt.UTC()
		lastMessageAt = &t
	}

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		contact.ExternalID,
		contact.Name,
		nullIfEmpty(contact.Status),
		contact.Tags,
		nullIfEmpty(contact.ProductInterest),
		contact.CreatedAt.UTC(),
		lastMessageAt,
	).Scan(&contact.ID)
	if err != nil {
		r.logger.Error("Failed to upsert contact", zap.String("external_id", contact.ExternalID), zap.Error(err))
		return err
	}
	return nil
}

// nullIfEmpty stores absent optional fields as NULL.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
