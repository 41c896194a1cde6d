package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/config"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zap.NewNop()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "crm.db"), logger)
	require.NoError(t, err)
	require.NoError(t, MigrateDB(db, "up", logger))

	store := NewSQLStore(db, logger)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestContactRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.Contacts[models.ChannelWhatsApp]
	assert.Equal(t, models.ChannelWhatsApp, repo.Channel())

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	last := base.Add(48 * time.Hour)

	first := &models.Contact{
		ExternalID:      "5511999990001",
		Name:            "Maria",
		Status:          "Caso Urgente",
		Tags:            models.StringList{"trabalhista", "urgente"},
		ProductInterest: "Revisão de Contrato",
		CreatedAt:       base,
		LastMessageAt:   &last,
	}
	second := &models.Contact{
		ExternalID: "5511999990002",
		Name:       "João",
		CreatedAt:  base.Add(10 * 24 * time.Hour),
	}
	require.NoError(t, repo.UpsertContact(ctx, first))
	require.NoError(t, repo.UpsertContact(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	total, err := repo.CountContacts(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	recent, err := repo.CountContacts(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, recent)

	// Bounds are inclusive.
	inclusive, err := repo.CountContacts(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 2, inclusive)

	contacts, err := repo.GetAllContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	assert.Equal(t, "Maria", contacts[0].Name)
	assert.Equal(t, models.StringList{"trabalhista", "urgente"}, contacts[0].Tags)
	assert.Equal(t, models.StageUrgentCase, contacts[0].Stage())
	assert.True(t, contacts[0].CreatedAt.Equal(base))
	require.NotNil(t, contacts[0].LastMessageAt)
	assert.True(t, contacts[0].LastMessageAt.Equal(last))

	// NULL status and product read back as empty strings.
	assert.Equal(t, "", contacts[1].Status)
	assert.Equal(t, models.StageNewContact, contacts[1].Stage())
	assert.Equal(t, models.UnknownProduct, contacts[1].Product())
	assert.Empty(t, contacts[1].Tags)
	assert.Nil(t, contacts[1].LastMessageAt)

	// Upsert updates in place.
	second.Status = "Triagem em Andamento"
	require.NoError(t, repo.UpsertContact(ctx, second))
	contacts, err = repo.GetAllContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Triagem em Andamento", contacts[1].Status)

	// Channels are stored separately.
	other, err := store.Contacts[models.ChannelInstagram].CountContacts(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestConversationRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.Conversations[models.ChannelInstagram]

	ts := time.Date(2026, 10, 2, 14, 30, 0, 0, time.UTC)
	require.NoError(t, repo.AppendMessage(ctx, "ig-1", models.Message{Timestamp: ts, From: "ig-1", Body: "Olá", Type: models.MessageText}))
	require.NoError(t, repo.AppendMessage(ctx, "ig-1", models.Message{Timestamp: ts.Add(time.Minute), From: models.OperatorAuthor, Body: "Bom dia", Type: models.MessageText}))
	require.NoError(t, repo.AppendMessage(ctx, "ig-2", models.Message{Timestamp: ts, From: "ig-2", Body: "Oi", Type: models.MessageText}))

	conversations, err := repo.GetAllConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	assert.Equal(t, "ig-1", conversations[0].ContactExternalID)
	require.Len(t, conversations[0].Messages, 2)
	assert.False(t, conversations[0].Messages[0].Outbound())
	assert.True(t, conversations[0].Messages[1].Outbound())
	assert.True(t, conversations[0].Messages[0].Timestamp.Equal(ts))
	assert.Len(t, conversations[1].Messages, 1)

	empty, err := store.Conversations[models.ChannelWhatsApp].GetAllConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	active := &models.Product{Name: "Divórcio"}
	inactive := &models.Product{Name: "Inventário", Activated: "no"}
	require.NoError(t, store.Products.UpsertProduct(ctx, active))
	require.NoError(t, store.Products.UpsertProduct(ctx, inactive))
	assert.Equal(t, "yes", active.Activated)

	products, err := store.Products.GetActivatedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Divórcio", products[0].Name)

	inactive.Activated = "yes"
	require.NoError(t, store.Products.UpsertProduct(ctx, inactive))
	products, err = store.Products.GetActivatedProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestMigrateDB(t *testing.T) {
	store := newTestStore(t)
	logger := zap.NewNop()

	assert.NoError(t, MigrateDB(store.DB, "up", logger))
	assert.NoError(t, MigrateDB(store.DB, "version", logger))
	assert.Error(t, MigrateDB(store.DB, "sideways", logger))

	require.NoError(t, MigrateDB(store.DB, "down", logger))
	_, err := store.Contacts[models.ChannelWhatsApp].CountContacts(context.Background(), time.Time{})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnknownDriver)

	store, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "open.db")}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, store.DB)
	assert.Len(t, store.Contacts, len(models.Channels))
	assert.Len(t, store.Conversations, len(models.Channels))
	assert.NoError(t, store.Close(ctx))
}

func TestNewSQLiteDBCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "crm.db")

	db, err := NewSQLiteDB(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, MigrateDB(db, "up", zap.NewNop()))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewSQLiteDBAcceptsFileURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "crm.db")

	db, err := NewSQLiteDB("file:"+path+"?mode=rwc", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.NoError(t, db.Ping())
}

func TestSQLiteDSN(t *testing.T) {
	cases := []struct {
		path string
		dsn  string
		file string
	}{
		{"./data/crm.db", "./data/crm.db?" + sqlitePragmas, "./data/crm.db"},
		{"file:crm.db?mode=rwc", "file:crm.db?mode=rwc&" + sqlitePragmas, "crm.db"},
		{"file:crm.db?", "file:crm.db?" + sqlitePragmas, "crm.db"},
		{":memory:", ":memory:?" + sqlitePragmas, ":memory:"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			dsn, file := sqliteDSN(tc.path)
			assert.Equal(t, tc.dsn, dsn)
			assert.Equal(t, tc.file, file)
		})
	}
}
