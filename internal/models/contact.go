package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UnknownProduct marks a contact with no product of interest.
const UnknownProduct = "UNKNOWN"

// Contact is a person reachable on one channel.
type Contact struct {
	ID              int64      `db:"id" json:"id" bson:"-"`
	ExternalID      string     `db:"external_id" json:"external_id" bson:"external_id"` // phone number or handle
	Name            string     `db:"name" json:"name" bson:"name"`
	Status          string     `db:"status" json:"status,omitempty" bson:"status,omitempty"` // empty when absent
	Tags            StringList `db:"tags" json:"tags" bson:"tags"`
	ProductInterest string     `db:"product_interest" json:"product_interest,omitempty" bson:"product_interest,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at" bson:"created_at"`
	LastMessageAt   *time.Time `db:"last_message_at" json:"last_message_at,omitempty" bson:"last_message_at,omitempty"`
}

// Stage returns the funnel stage the contact currently occupies.
func (c *Contact) Stage() FunnelStage {
	return ClassifyStatus(c.Status)
}

// Product returns the product of interest, or UnknownProduct when absent.
func (c *Contact) Product() string {
	if c.ProductInterest == "" {
		return UnknownProduct
	}
	return c.ProductInterest
}

// LastActivity is the last message time, falling back to the creation time.
func (c *Contact) LastActivity() time.Time {
	if c.LastMessageAt != nil {
		return *c.LastMessageAt
	}
	return c.CreatedAt
}

// StringList is a list of strings persisted as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, (*[]string)(l))
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}
