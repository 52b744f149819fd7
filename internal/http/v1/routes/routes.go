package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-shared-libs/internal/http/v1/items"
	itemsvc "github.com/janisto/huma-shared-libs/internal/service/items"
)

// Register wires all v1 routes into the provided API router.
func Register(api huma.API, catalog itemsvc.Service) {
	items.Register(api, catalog, apiPrefix(api))
}

// apiPrefix is the path of the first server URL, used for absolute links.
func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
