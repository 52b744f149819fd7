package items

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/janisto/huma-shared-libs/internal/platform/collections"
	"github.com/janisto/huma-shared-libs/internal/platform/contract"
	"github.com/janisto/huma-shared-libs/internal/service/httpclient"
)

// ItemParams identifies one catalog item.
type ItemParams struct {
	ID string `url:"id"`
}

// CatalogQuery filters the backend listing.
type CatalogQuery struct {
	Category string `url:"category,omitempty"`
}

// CatalogPage is the backend listing body.
type CatalogPage struct {
	Items []Item `json:"items"`
}

// ListCatalog lists the backend catalog.
var ListCatalog = contract.Get[contract.Empty, CatalogQuery, CatalogPage]("catalog-list-items", "/catalog/items").
	WithSummary("List catalog items", "Catalog")

// GetCatalogItem fetches one backend catalog item.
var GetCatalogItem = contract.Get[ItemParams, contract.Empty, Item]("catalog-get-item", "/catalog/items/{id}").
	WithSummary("Get catalog item", "Catalog")

// Remote reads the catalog from a backend service.
type Remote struct {
	client *httpclient.Client
}

// NewRemote returns a Service backed by client.
func NewRemote(client *httpclient.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) List(ctx context.Context, params ListParams) ([]Item, error) {
	resp, err := httpclient.Send(ctx, r.client, ListCatalog, httpclient.Request[contract.Empty, CatalogQuery, contract.Empty]{
		Query: CatalogQuery{Category: params.Category},
	})
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	// Duplicate IDs keep their first occurrence.
	items := collections.UniqueBy(resp.Body.Items, func(item Item) string { return item.ID })
	slices.SortFunc(items, Compare)
	return items, nil
}

func (r *Remote) Get(ctx context.Context, id string) (*Item, error) {
	resp, err := httpclient.Send(ctx, r.client, GetCatalogItem, httpclient.Request[ItemParams, contract.Empty, contract.Empty]{
		Params: ItemParams{ID: id},
	})
	if errors.Is(err, httpclient.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	item := resp.Body
	return &item, nil
}

var _ Service = (*Remote)(nil)
