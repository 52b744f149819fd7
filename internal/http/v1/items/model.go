package items

import (
	"github.com/janisto/huma-shared-libs/internal/platform/timeutil"
	itemsvc "github.com/janisto/huma-shared-libs/internal/service/items"
)

// Item is the API representation of a catalog item.
type Item struct {
	ID        string        `json:"id"        format:"uuid" doc:"Unique identifier"  example:"5b2c3f2e-7d1e-5c55-8f7a-3c2d9a4e5b10"`
	Name      string        `json:"name"                    doc:"Display name"       example:"Alpha Widget"`
	Slug      string        `json:"slug"                    doc:"URL-friendly name"  example:"alpha-widget"`
	Category  string        `json:"category"                doc:"Item category"      example:"electronics"`
	Price     float64       `json:"price"                   doc:"Price in USD"       example:"29.99"`
	InStock   bool          `json:"inStock"                 doc:"Availability"       example:"true"`
	CreatedAt timeutil.Time `json:"createdAt"               doc:"Creation timestamp" example:"2024-01-15T10:30:00.000Z"`
}

// ItemCursor is the keyset position encoded in before/after tokens.
type ItemCursor struct {
	ID   string `json:"id"   format:"uuid"`
	Name string `json:"name" minLength:"1"`
}

func toHTTPItem(item itemsvc.Item) Item {
	return Item{
		ID:        item.ID,
		Name:      item.Name,
		Slug:      item.Slug,
		Category:  item.Category,
		Price:     item.Price,
		InStock:   item.InStock,
		CreatedAt: timeutil.NewTime(item.CreatedAt),
	}
}

func cursorOf(item itemsvc.Item) ItemCursor {
	return ItemCursor{ID: item.ID, Name: item.Name}
}
