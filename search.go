package eansearch

import (
	"context"
	"net/url"
	"strconv"
)

// ProductSearch returns products whose name matches the given term.
// Results are paged; page 0 is the first page. The returned slice is
// empty when nothing matches or the service rejects the term.
func (c *Client) ProductSearch(ctx context.Context, name string, page int) ([]Product, error) {
	params := url.Values{}
	params.Set("name", name)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	return c.searchList(ctx, opProductSearch, params)
}

// SimilarProductSearch is ProductSearch with fuzzy matching: the service
// also returns products whose names only resemble the term.
func (c *Client) SimilarProductSearch(ctx context.Context, name string, page int) ([]Product, error) {
	params := url.Values{}
	params.Set("name", name)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	return c.searchList(ctx, opSimilarSearch, params)
}

// BarcodePrefixSearch returns products whose barcode starts with the
// given digits. Results are paged; page 0 is the first page.
func (c *Client) BarcodePrefixSearch(ctx context.Context, prefix string, page int) ([]Product, error) {
	params := url.Values{}
	params.Set("prefix", prefix)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	return c.searchList(ctx, opBarcodePrefixSearch, params)
}

// CategorySearch returns products in the given category, optionally
// narrowed by a name filter. Results are paged; page 0 is the first page.
func (c *Client) CategorySearch(ctx context.Context, category, name string, page int) ([]Product, error) {
	params := url.Values{}
	params.Set("category", category)
	if name != "" {
		params.Set("name", name)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	return c.searchList(ctx, opCategorySearch, params)
}
