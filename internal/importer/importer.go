// Package importer seeds a store from a YAML fixture of contacts,
// conversations and the product catalog.
package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Products []ProductFixture                  `yaml:"products"`
	Channels map[models.Channel]ChannelFixture `yaml:"channels"`
}

type ProductFixture struct {
	Name      string `yaml:"name"`
	Activated string `yaml:"activated"`
}

type ChannelFixture struct {
	Contacts []ContactFixture `yaml:"contacts"`
}

type ContactFixture struct {
	ExternalID      string           `yaml:"external_id"`
	Name            string           `yaml:"name"`
	Status          string           `yaml:"status"`
	Tags            []string         `yaml:"tags"`
	ProductInterest string           `yaml:"product_interest"`
	CreatedAt       time.Time        `yaml:"created_at"`
	Messages        []models.Message `yaml:"messages"`
}

// Summary counts what an import wrote.
type Summary struct {
	Products int
	Contacts int
	Messages int
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for channel, ch := range fx.Channels {
		if !channel.Valid() {
			return nil, fmt.Errorf("fixture %s: unknown channel %q", path, channel)
		}
		for i, c := range ch.Contacts {
			if c.ExternalID == "" {
				return nil, fmt.Errorf("fixture %s: %s contact #%d has no external_id", path, channel, i+1)
			}
		}
	}
	return &fx, nil
}

type Importer struct {
	store  *repository.Store
	logger *zap.Logger
}

func NewImporter(store *repository.Store, logger *zap.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import upserts the catalog, then every contact followed by its messages.
// A contact's last message time is derived from its newest message.
func (i *Importer) Import(ctx context.Context, fx *Fixture) (Summary, error) {
	var sum Summary

	for _, p := range fx.Products {
		product := &models.Product{Name: p.Name, Activated: p.Activated}
		if err := i.store.Products.UpsertProduct(ctx, product); err != nil {
			return sum, fmt.Errorf("import product %q: %w", p.Name, err)
		}
		sum.Products++
	}

	// Channel order keeps ids stable between runs.
	for _, channel := range models.Channels {
		ch, ok := fx.Channels[channel]
		if !ok {
			continue
		}
		contacts := i.store.Contacts[channel]
		conversations := i.store.Conversations[channel]

		for _, c := range ch.Contacts {
			contact := &models.Contact{
				ExternalID:      c.ExternalID,
				Name:            c.Name,
				Status:          c.Status,
				Tags:            models.StringList(c.Tags),
				ProductInterest: c.ProductInterest,
				CreatedAt:       c.CreatedAt,
				LastMessageAt:   lastMessageAt(c.Messages),
			}
			if err := contacts.UpsertContact(ctx, contact); err != nil {
				return sum, fmt.Errorf("import %s contact %s: %w", channel, c.ExternalID, err)
			}
			sum.Contacts++

			for _, msg := range c.Messages {
				if msg.From == "" {
					msg.From = c.ExternalID
				}
				if msg.Type == "" {
					msg.Type = models.MessageText
				}
				if err := conversations.AppendMessage(ctx, c.ExternalID, msg); err != nil {
					return sum, fmt.Errorf("import %s message for %s: %w", channel, c.ExternalID, err)
				}
				sum.Messages++
			}
		}
	}

	i.logger.Info("Fixture imported",
		zap.Int("products", sum.Products),
		zap.Int("contacts", sum.Contacts),
		zap.Int("messages", sum.Messages),
	)
	return sum, nil
}

func lastMessageAt(msgs []models.Message) *time.Time {
	var latest *time.Time
	for idx := range msgs {
		ts := msgs[idx].Timestamp
		if latest == nil || ts.After(*latest) {
			latest = &ts
		}
	}
	return latest
}
