package items

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-shared-libs/internal/platform/contract"
	applog "github.com/janisto/huma-shared-libs/internal/platform/logging"
	"github.com/janisto/huma-shared-libs/internal/platform/pagination"
	"github.com/janisto/huma-shared-libs/internal/service/httpclient"
	itemsvc "github.com/janisto/huma-shared-libs/internal/service/items"
)

// GetRoute is the single item lookup, shared with typed clients.
var GetRoute = contract.Get[itemsvc.ItemParams, contract.Empty, Item]("get-item", "/items/{id}").
	WithSummary("Get an item", "Items").
	WithDescription("Returns a single catalog item by its identifier.")

var keyset = pagination.Keyset[itemsvc.Item, ItemCursor]{
	Compare: func(item itemsvc.Item, c ItemCursor) int {
		return itemsvc.CompareKey(item, c.Name, c.ID)
	},
	CursorOf: cursorOf,
}

// Register wires item routes into the provided API router.
func Register(api huma.API, svc itemsvc.Service, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        "/items",
		Summary:     "List items with keyset pagination",
		Description: "Returns items ordered by name. Follow the Link header, or pass nextCursor as after and prevCursor as before.",
		Tags:        []string{"Items"},
	}, func(ctx context.Context, input *ListInput) (*ListOutput, error) {
		all, err := svc.List(ctx, itemsvc.ListParams{Category: input.Category})
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}

		query := url.Values{}
		if input.Category != "" {
			query.Set("category", input.Category)
		}

		page, err := pagination.Paginate(all, input.Request(), keyset, prefix+"/items", query)
		if err != nil {
			applog.LogError(ctx, "paginating items", err)
			return nil, huma.Error500InternalServerError("internal server error")
		}

		data := ListData{
			Items:      make([]Item, 0, len(page.Items)),
			Total:      page.Total,
			NextCursor: page.NextCursor,
			PrevCursor: page.PrevCursor,
		}
		for _, item := range page.Items {
			data.Items = append(data.Items, toHTTPItem(item))
		}
		return &ListOutput{Link: page.LinkHeader, Body: data}, nil
	})

	contract.Register(api, GetRoute, func(ctx context.Context, input *GetInput) (*GetOutput, error) {
		item, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &GetOutput{Body: toHTTPItem(*item)}, nil
	})
}

func mapServiceError(ctx context.Context, err error) error {
	if errors.Is(err, itemsvc.ErrNotFound) {
		return huma.Error404NotFound("item not found")
	}

	var upstreamErr *httpclient.UpstreamError
	if errors.As(err, &upstreamErr) {
		switch upstreamErr.Kind {
		case httpclient.KindNotFound:
			return huma.Error404NotFound("item not found")
		case httpclient.KindRateLimited:
			rateLimitErr := huma.Error429TooManyRequests("catalog rate limit exceeded")
			if upstreamErr.RetryAfter > 0 {
				headers := make(http.Header)
				headers.Set("Retry-After", strconv.Itoa(int(math.Ceil(upstreamErr.RetryAfter.Seconds()))))
				return huma.ErrorWithHeaders(rateLimitErr, headers)
			}
			return rateLimitErr
		case httpclient.KindForbidden:
			return huma.Error403Forbidden("catalog access denied")
		}
	}

	applog.LogError(ctx, "catalog request failed", err)
	if errors.Is(err, httpclient.ErrResponseValidation) {
		return huma.Error502BadGateway("catalog returned an invalid response")
	}
	return huma.Error502BadGateway("catalog unavailable")
}
