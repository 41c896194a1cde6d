package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/config"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrUnknownDriver is returned for an unsupported database.driver.
var ErrUnknownDriver = errors.New("unknown database driver")

// Store bundles the repositories of every channel over one backing database.
type Store struct {
	Contacts      map[models.Channel]ContactRepository
	Conversations map[models.Channel]ConversationRepository
	Products      ProductRepository

	// DB is set for the SQL drivers and nil for mongo.
	DB *sqlx.DB

	close func(ctx context.Context) error
}

// Open connects to the database described by cfg and wires its repositories.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := NewPostgresDB(cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return NewSQLStore(db, logger), nil
	case "sqlite":
		db, err := NewSQLiteDB(cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return NewSQLStore(db, logger), nil
	case "mongo":
		client, err := NewMongoClient(ctx, cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		db := client.Database(cfg.Name)
		if err := ensureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		store := &Store{
			Contacts:      make(map[models.Channel]ContactRepository),
			Conversations: make(map[models.Channel]ConversationRepository),
			Products:      NewMongoProductRepository(db, logger),
			close:         client.Disconnect,
		}
		for _, channel := range models.Channels {
			store.Contacts[channel] = NewMongoContactRepository(db, channel, logger)
			store.Conversations[channel] = NewMongoConversationRepository(db, channel, logger)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// NewSQLStore wires the SQL repositories over an open connection.
func NewSQLStore(db *sqlx.DB, logger *zap.Logger) *Store {
	store := &Store{
		Contacts:      make(map[models.Channel]ContactRepository),
		Conversations: make(map[models.Channel]ConversationRepository),
		Products:      NewProductRepository(db, logger),
		DB:            db,
		close:         func(context.Context) error { return db.Close() },
	}
	for _, channel := range models.Channels {
		store.Contacts[channel] = NewContactRepository(db, channel, logger)
		store.Conversations[channel] = NewConversationRepository(db, channel, logger)
	}
	return store
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
