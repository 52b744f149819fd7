package items

import "github.com/janisto/huma-shared-libs/internal/platform/pagination"

// ListInput defines query parameters for listing items.
type ListInput struct {
	pagination.OptionalQuery[ItemCursor]
	Category string `query:"category" doc:"Filter by category" example:"electronics" enum:"electronics,tools,accessories,robotics,power,components"`
}

// GetInput identifies a single item.
type GetInput struct {
	ID string `path:"id" format:"uuid" doc:"Item identifier"`
}
