package eansearch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eansearch "github.com/eansearch/eansearch-go"
)

// newPrefixSearchStub serves two pages of prefix-search results and an
// empty third page.
func newPrefixSearchStub(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"": `{"productlist":[
			{"ean":"4007249146069","name":"Steckdosenleiste 6-fach","issuingCountry":"DE"},
			{"ean":"4007249146076","name":"Steckdosenleiste 8-fach","issuingCountry":"DE"}
		]}`,
		"1": `{"productlist":[
			{"ean":"4007249146083","name":"Reiseadapter","issuingCountry":"DE"},
			{"ean":"4007249146090","name":"Zeitschaltuhr","issuingCountry":"DE"}
		]}`,
		"2": `{"productlist":[]}`,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			body = `{"productlist":[]}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestPaginator_Paginate(t *testing.T) {
	t.Parallel()

	product := func(ean, name string) eansearch.Product {
		return eansearch.Product{EAN: ean, Name: name, IssuingCountry: "DE"}
	}

	tests := []struct {
		name         string
		maxPages     int
		pages        [][]eansearch.Product
		wantProducts int
		wantPages    int
		wantStopped  string
	}{
		{
			name: "stops on empty page",
			pages: [][]eansearch.Product{
				{product("4007249146069", "Brennenstuhl Steckdosenleiste")},
				{},
			},
			wantProducts: 1,
			wantPages:    2,
			wantStopped:  "no_more_results",
		},
		{
			name: "stops when a page repeats known barcodes",
			pages: [][]eansearch.Product{
				{product("4007249146069", "Brennenstuhl Steckdosenleiste"), product("4007249146076", "Brennenstuhl Adapter")},
				{product("4007249146069", "Brennenstuhl Steckdosenleiste")},
			},
			wantProducts: 2,
			wantPages:    2,
			wantStopped:  "repeat_results",
		},
		{
			name:     "stops at max pages",
			maxPages: 2,
			pages: [][]eansearch.Product{
				{product("4007249146069", "A")},
				{product("4007249146076", "B")},
				{product("4007249146083", "C")},
			},
			wantProducts: 2,
			wantPages:    2,
			wantStopped:  "max_pages",
		},
		{
			name: "dedupes overlapping pages",
			pages: [][]eansearch.Product{
				{product("4007249146069", "A"), product("4007249146076", "B")},
				{product("4007249146076", "B"), product("4007249146083", "C")},
				{},
			},
			wantProducts: 3,
			wantPages:    3,
			wantStopped:  "no_more_results",
		},
		{
			name:         "empty first page",
			pages:        [][]eansearch.Product{{}},
			wantProducts: 0,
			wantPages:    1,
			wantStopped:  "no_more_results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			maxPages := tt.maxPages
			if maxPages == 0 {
				maxPages = 10
			}

			paginator := eansearch.NewPaginator(eansearch.WithMaxPages(maxPages))

			result, err := paginator.Paginate(context.Background(), func(_ context.Context, page int) ([]eansearch.Product, error) {
				require.Less(t, page, len(tt.pages), "fetched past the prepared pages")
				return tt.pages[page], nil
			})

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Len(t, result.Products, tt.wantProducts)
			assert.Equal(t, tt.wantPages, result.PagesUsed)
			assert.Equal(t, tt.wantStopped, result.StoppedAt)
		})
	}
}

func TestPaginator_Paginate_SearchError(t *testing.T) {
	t.Parallel()

	paginator := eansearch.NewPaginator()

	_, err := paginator.Paginate(context.Background(), func(_ context.Context, page int) ([]eansearch.Product, error) {
		if page == 0 {
			return []eansearch.Product{{EAN: "4007249146069", Name: "A"}}, nil
		}
		return nil, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "searching page 1")
}

func TestPaginator_Paginate_WithClient(t *testing.T) {
	t.Parallel()

	// End to end: paginate a prefix search against a stub server that
	// serves two pages and then runs dry.
	srv := newPrefixSearchStub(t)
	defer srv.Close()

	client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
	require.NoError(t, err)

	paginator := eansearch.NewPaginator(eansearch.WithMaxPages(5))

	result, err := paginator.Paginate(context.Background(), func(ctx context.Context, page int) ([]eansearch.Product, error) {
		return client.BarcodePrefixSearch(ctx, "40072491", page)
	})

	require.NoError(t, err)
	assert.Equal(t, 4, len(result.Products))
	assert.Equal(t, 3, result.PagesUsed)
	assert.Equal(t, "no_more_results", result.StoppedAt)
}
