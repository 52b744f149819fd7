package items

// ListData is the response body containing one page of items.
type ListData struct {
	Items      []Item `json:"items"                doc:"Items on this page"`
	Total      int    `json:"total"                doc:"Total count of items matching the filter" example:"30"`
	NextCursor string `json:"nextCursor,omitempty" doc:"Pass as after to read the next page"`
	PrevCursor string `json:"prevCursor,omitempty" doc:"Pass as before to read the previous page"`
}

// ListOutput carries the page and its RFC 8288 Link header.
type ListOutput struct {
	Link string `header:"Link" doc:"RFC 8288 pagination links"`
	Body ListData
}

// GetOutput wraps a single item.
type GetOutput struct {
	Body Item
}
