package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// OperatorAuthor is the author identifier of messages sent by the system or
// an operator. Any other author is the external contact.
const OperatorAuthor = "1"

// MessageType classifies a message body.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageAudio    MessageType = "audio"
	MessageVideo    MessageType = "video"
	MessageDocument MessageType = "document"
)

// Message is one entry embedded in a conversation.
type Message struct {
	Timestamp time.Time   `json:"timestamp" bson:"timestamp" yaml:"timestamp"`
	From      string      `json:"from" bson:"from" yaml:"from"`
	Body      string      `json:"body" bson:"body" yaml:"body"`
	Type      MessageType `json:"type,omitempty" bson:"type,omitempty" yaml:"type"`
}

// Outbound reports whether the message was sent by the operator side.
func (m Message) Outbound() bool {
	return m.From == OperatorAuthor
}

// Conversation holds every message exchanged with one contact. The
// conversation is the unit of storage; messages are only ever appended.
type Conversation struct {
	ID                int64       `db:"id" json:"id" bson:"-"`
	ContactExternalID string      `db:"contact_external_id" json:"contact_external_id" bson:"contact_external_id"`
	Messages          MessageList `db:"messages" json:"messages" bson:"messages"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at" bson:"updated_at"`
}

// MessageList is the embedded message array, persisted as JSON in SQL stores.
type MessageList []Message

// Value implements driver.Valuer.
func (l MessageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Message(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *MessageList) Scan(src interface{}) error {
	return scanJSON(src, (*[]Message)(l))
}
