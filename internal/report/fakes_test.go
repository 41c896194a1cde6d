package report

import (
	"context"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/repository"
)

type fakeContacts struct {
	channel  models.Channel
	contacts []*models.Contact
	err      error
}

func (f *fakeContacts) Channel() models.Channel { return f.channel }

func (f *fakeContacts) CountContacts(_ context.Context, since time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, c := range f.contacts {
		if since.IsZero() || !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeContacts) GetAllContacts(context.Context) ([]*models.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contacts, nil
}

func (f *fakeContacts) UpsertContact(_ context.Context, c *models.Contact) error {
	f.contacts = append(f.contacts, c)
	return nil
}

type fakeConversations struct {
	channel       models.Channel
	conversations []*models.Conversation
	err           error
}

func (f *fakeConversations) Channel() models.Channel { return f.channel }

func (f *fakeConversations) GetAllConversations(context.Context) ([]*models.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conversations, nil
}

func (f *fakeConversations) AppendMessage(_ context.Context, id string, msg models.Message) error {
	for _, c := range f.conversations {
		if c.ContactExternalID == id {
			c.Messages = append(c.Messages, msg)
			return nil
		}
	}
	f.conversations = append(f.conversations, &models.Conversation{ContactExternalID: id, Messages: models.MessageList{msg}})
	return nil
}

type fakeProducts struct {
	products []*models.Product
	err      error
}

func (f *fakeProducts) GetActivatedProducts(context.Context) ([]*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Product
	for _, p := range f.products {
		if p.IsActivated() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) UpsertProduct(_ context.Context, p *models.Product) error {
	f.products = append(f.products, p)
	return nil
}

type fakeStore struct {
	contacts      map[models.Channel]*fakeContacts
	conversations map[models.Channel]*fakeConversations
	products      *fakeProducts
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		contacts:      map[models.Channel]*fakeContacts{},
		conversations: map[models.Channel]*fakeConversations{},
		products:      &fakeProducts{},
	}
	for _, ch := range models.Channels {
		s.contacts[ch] = &fakeContacts{channel: ch}
		s.conversations[ch] = &fakeConversations{channel: ch}
	}
	return s
}

func (s *fakeStore) fetcher() *Fetcher {
	contacts := map[models.Channel]repository.ContactRepository{}
	conversations := map[models.Channel]repository.ConversationRepository{}
	for _, ch := range models.Channels {
		contacts[ch] = s.contacts[ch]
		conversations[ch] = s.conversations[ch]
	}
	return NewFetcher(contacts, conversations, s.products)
}
