package report

import (
	"context"
	"fmt"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/repository"
)

// Dataset is everything a report is computed from.
type Dataset struct {
	// ContactCounts holds the contacts created inside the window, per channel.
	ContactCounts map[models.Channel]int
	// Contacts and Conversations hold every record, regardless of window.
	Contacts      map[models.Channel][]*models.Contact
	Conversations map[models.Channel][]*models.Conversation
	Products      []*models.Product
}

// AllContacts returns the contacts of every channel in channel order.
func (d *Dataset) AllContacts() []*models.Contact {
	var all []*models.Contact
	for _, channel := range models.Channels {
		all = append(all, d.Contacts[channel]...)
	}
	return all
}

// AllConversations returns the conversations of every channel in channel order.
func (d *Dataset) AllConversations() []*models.Conversation {
	var all []*models.Conversation
	for _, channel := range models.Channels {
		all = append(all, d.Conversations[channel]...)
	}
	return all
}

// Fetcher reads the records of both channels. Queries run one after the
// other and are not isolated from concurrent writes.
type Fetcher struct {
	contacts      map[models.Channel]repository.ContactRepository
	conversations map[models.Channel]repository.ConversationRepository
	products      repository.ProductRepository
}

// NewFetcher builds a Fetcher over the repositories of every channel.
func NewFetcher(
	contacts map[models.Channel]repository.ContactRepository,
	conversations map[models.Channel]repository.ConversationRepository,
	products repository.ProductRepository,
) *Fetcher {
	return &Fetcher{contacts: contacts, conversations: conversations, products: products}
}

// Fetch loads a Dataset. The first failing query aborts the fetch.
func (f *Fetcher) Fetch(ctx context.Context, window Window) (*Dataset, error) {
	ds := &Dataset{
		ContactCounts: make(map[models.Channel]int, len(models.Channels)),
		Contacts:      make(map[models.Channel][]*models.Contact, len(models.Channels)),
		Conversations: make(map[models.Channel][]*models.Conversation, len(models.Channels)),
	}

	for _, channel := range models.Channels {
		repo, ok := f.contacts[channel]
		if !ok {
			return nil, fmt.Errorf("no contact repository for channel %s", channel)
		}
		count, err := repo.CountContacts(ctx, window.Since())
		if err != nil {
			return nil, fmt.Errorf("count %s contacts: %w", channel, err)
		}
		ds.ContactCounts[channel] = count
	}

	for _, channel := range models.Channels {
		contacts, err := f.contacts[channel].GetAllContacts(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s contacts: %w", channel, err)
		}
		ds.Contacts[channel] = contacts
	}

	for _, channel := range models.Channels {
		repo, ok := f.conversations[channel]
		if !ok {
			return nil, fmt.Errorf("no conversation repository for channel %s", channel)
		}
		conversations, err := repo.GetAllConversations(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s conversations: %w", channel, err)
		}
		ds.Conversations[channel] = conversations
	}

	products, err := f.products.GetActivatedProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	ds.Products = products

	return ds, nil
}
