package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	logger := zap.NewNop()
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "crm.db"), logger)
	require.NoError(t, err)
	require.NoError(t, repository.MigrateDB(db, "up", logger))
	store := repository.NewSQLStore(db, logger)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestLoadFixture(t *testing.T) {
	fx, err := LoadFixture("testdata/fixture.yml")
	require.NoError(t, err)

	assert.Len(t, fx.Products, 3)
	require.Contains(t, fx.Channels, models.ChannelWhatsApp)
	wa := fx.Channels[models.ChannelWhatsApp].Contacts
	require.Len(t, wa, 2)
	assert.Equal(t, []string{"trabalhista", "urgente"}, wa[0].Tags)
	assert.True(t, wa[0].CreatedAt.Equal(time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.OperatorAuthor, wa[0].Messages[1].From)
}

func TestLoadFixtureErrors(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	badChannel := filepath.Join(t.TempDir(), "channel.yml")
	require.NoError(t, os.WriteFile(badChannel, []byte("channels:\n  telegram:\n    contacts: []\n"), 0o600))
	_, err = LoadFixture(badChannel)
	assert.ErrorContains(t, err, "unknown channel")

	noID := filepath.Join(t.TempDir(), "noid.yml")
	require.NoError(t, os.WriteFile(noID, []byte("channels:\n  whatsapp:\n    contacts:\n      - name: X\n"), 0o600))
	_, err = LoadFixture(noID)
	assert.ErrorContains(t, err, "no external_id")
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	fx, err := LoadFixture("testdata/fixture.yml")
	require.NoError(t, err)

	sum, err := NewImporter(store, zap.NewNop()).Import(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Products: 3, Contacts: 3, Messages: 3}, sum)

	products, err := store.Products.GetActivatedProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	contacts, err := store.Contacts[models.ChannelWhatsApp].GetAllContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	require.NotNil(t, contacts[0].LastMessageAt)
	assert.True(t, contacts[0].LastMessageAt.Equal(time.Date(2026, 10, 13, 10, 5, 0, 0, time.UTC)))
	assert.Nil(t, contacts[1].LastMessageAt)

	conversations, err := store.Conversations[models.ChannelWhatsApp].GetAllConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	msgs := conversations[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "5511999990001", msgs[0].From)
	assert.Equal(t, models.MessageText, msgs[0].Type)
	assert.True(t, msgs[1].Outbound())

	// Re-importing upserts contacts and appends messages again.
	_, err = NewImporter(store, zap.NewNop()).Import(ctx, fx)
	require.NoError(t, err)
	total, err := store.Contacts[models.ChannelWhatsApp].CountContacts(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
