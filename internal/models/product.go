package models

// Product is a catalog entry contacts can show interest in.
type Product struct {
	ID        int64  `db:"id" json:"id" bson:"-"`
	Name      string `db:"name" json:"name" bson:"name"`
	Activated string `db:"activated" json:"activated" bson:"activated"` // "yes" or "no"
}

// IsActivated reports whether the product counts toward interest tallies.
func (p *Product) IsActivated() bool {
	return p.Activated == "yes"
}
