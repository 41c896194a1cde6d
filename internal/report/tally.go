package report

import (
	"slices"
	"strings"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
)

const (
	// TopProductsLimit caps the product interest ranking.
	TopProductsLimit = 10
	// ActiveLookback is how recent a contact's activity must be to count as active.
	ActiveLookback = 7 * 24 * time.Hour
)

// ProductCount is the number of contacts interested in a product.
type ProductCount struct {
	Name     string `json:"nome"`
	Contacts int    `json:"contatos"`
}

// TallyProducts ranks the activated catalog products by contact interest.
// Interests outside the catalog, absent or UNKNOWN are returned as unknown.
// Ties keep the order in which products were first seen.
func TallyProducts(contacts []*models.Contact, catalog []*models.Product) ([]ProductCount, int) {
	activated := make(map[string]bool, len(catalog))
	for _, product := range catalog {
		if product.IsActivated() {
			activated[strings.TrimSpace(product.Name)] = true
		}
	}

	ranking := []ProductCount{}
	position := make(map[string]int)
	unknown := 0
	for _, contact := range contacts {
		name := strings.TrimSpace(contact.Product())
		if name == models.UnknownProduct || !activated[name] {
			unknown++
			continue
		}
		i, ok := position[name]
		if !ok {
			i = len(ranking)
			position[name] = i
			ranking = append(ranking, ProductCount{Name: name})
		}
		ranking[i].Contacts++
	}

	slices.SortStableFunc(ranking, func(a, b ProductCount) int {
		return b.Contacts - a.Contacts
	})
	if len(ranking) > TopProductsLimit {
		ranking = ranking[:TopProductsLimit]
	}
	return ranking, unknown
}

// TallyTags counts how many contacts carry each tag.
func TallyTags(contacts []*models.Contact) map[string]int {
	tags := make(map[string]int)
	for _, contact := range contacts {
		for _, tag := range contact.Tags {
			tags[tag]++
		}
	}
	return tags
}

// CountActive counts contacts with activity in the ActiveLookback before now.
func CountActive(contacts []*models.Contact, now time.Time) int {
	cutoff := now.Add(-ActiveLookback)
	active := 0
	for _, contact := range contacts {
		if !contact.LastActivity().Before(cutoff) {
			active++
		}
	}
	return active
}
