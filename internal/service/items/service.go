// Package items provides the item catalog behind the items API.
package items

import (
	"cmp"
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no item has the requested ID.
var ErrNotFound = errors.New("item not found")

// Item is a catalog entry.
type Item struct {
	ID        string    `json:"id"        format:"uuid"`
	Name      string    `json:"name"      minLength:"1"`
	Slug      string    `json:"slug"      pattern:"^[a-z0-9]+(-[a-z0-9]+)*$"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"     minimum:"0"`
	InStock   bool      `json:"inStock"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListParams filters List.
type ListParams struct {
	Category string
}

// Service reads the catalog.
//
// List returns items ordered by Compare, which is the keyset order used for
// pagination.
type Service interface {
	List(ctx context.Context, params ListParams) ([]Item, error)
	Get(ctx context.Context, id string) (*Item, error)
}

// Compare orders items by name, then ID.
func Compare(a, b Item) int {
	return CompareKey(a, b.Name, b.ID)
}

// CompareKey orders item relative to the position (name, id).
func CompareKey(item Item, name, id string) int {
	return cmp.Or(cmp.Compare(item.Name, name), cmp.Compare(item.ID, id))
}
