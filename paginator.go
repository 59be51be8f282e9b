package eansearch

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

const defaultMaxPages = 20

// SearchPageFunc fetches one page of search results. Adapt any of the
// search-family methods to it with a closure:
//
//	p.Paginate(ctx, func(ctx context.Context, page int) ([]Product, error) {
//		return client.ProductSearch(ctx, "bosch", page)
//	})
type SearchPageFunc func(ctx context.Context, page int) ([]Product, error)

// Paginator drains a paged search into one result set.
type Paginator struct {
	logger   *log.Logger
	maxPages int
}

// PaginatorOption configures the Paginator.
type PaginatorOption func(*Paginator)

// WithMaxPages overrides the page budget.
func WithMaxPages(n int) PaginatorOption {
	return func(p *Paginator) {
		p.maxPages = n
	}
}

// WithPaginatorLogger sets the logger.
func WithPaginatorLogger(l *log.Logger) PaginatorOption {
	return func(p *Paginator) {
		p.logger = l
	}
}

// NewPaginator creates a new Paginator.
func NewPaginator(opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PaginateResult holds the outcome of a drained search.
type PaginateResult struct {
	Products  []Product
	TotalSeen int
	PagesUsed int
	StoppedAt string // "no_more_results", "repeat_results", "max_pages"
}

// Paginate walks pages from 0 upward, stopping at the first empty page,
// at the page budget, or when a page adds nothing new. Products are
// deduplicated by EAN: some deployments clamp out-of-range pages to the
// last page instead of answering empty, and the dedupe turns that into a
// clean stop.
func (p *Paginator) Paginate(ctx context.Context, fn SearchPageFunc) (*PaginateResult, error) {
	result := &PaginateResult{}
	seen := make(map[string]bool)

	for page := range p.maxPages {
		products, err := fn(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("searching page %d: %w", page, err)
		}

		result.PagesUsed++

		if len(products) == 0 {
			result.StoppedAt = "no_more_results"
			return result, nil
		}

		var added int
		for i := range products {
			result.TotalSeen++

			if seen[products[i].EAN] {
				continue
			}
			seen[products[i].EAN] = true
			result.Products = append(result.Products, products[i])
			added++
		}

		if added == 0 {
			result.StoppedAt = "repeat_results"
			return result, nil
		}

		if p.logger != nil {
			p.logger.Debug("page fetched", "page", page, "added", added, "total", len(result.Products))
		}
	}

	result.StoppedAt = "max_pages"
	return result, nil
}
