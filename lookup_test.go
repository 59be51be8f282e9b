package eansearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eansearch "github.com/eansearch/eansearch-go"
)

func TestClient_GtinLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ean         string
		language    int
		handler     http.HandlerFunc
		wantErr     error
		errContain  string
		wantProduct *eansearch.Product
	}{
		{
			name:     "found",
			ean:      "5099750442227",
			language: 0,
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "barcode-lookup", r.URL.Query().Get("op"))
				assert.Equal(t, "5099750442227", r.URL.Query().Get("ean"))
				assert.Equal(t, "1", r.URL.Query().Get("language"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"ean":"5099750442227","name":"Thriller","categoryId":"15","categoryName":"Music","issuingCountry":"UK"}]`))
			},
			wantProduct: &eansearch.Product{
				EAN:            "5099750442227",
				Name:           "Thriller",
				CategoryID:     "15",
				CategoryName:   "Music",
				IssuingCountry: "UK",
			},
		},
		{
			name:     "explicit language",
			ean:      "4006381333931",
			language: 3,
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "3", r.URL.Query().Get("language"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"ean":"4006381333931","name":"Edding 400 Permanentmarker","issuingCountry":"DE"}]`))
			},
			wantProduct: &eansearch.Product{
				EAN:            "4006381333931",
				Name:           "Edding 400 Permanentmarker",
				IssuingCountry: "DE",
			},
		},
		{
			name:     "not found",
			ean:      "9999999999999",
			language: 0,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			},
			wantErr: eansearch.ErrProductNotFound,
		},
		{
			name:     "invalid query",
			ean:      "not-a-barcode",
			language: 0,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			wantErr: eansearch.ErrInvalidQuery,
		},
		{
			name:     "malformed response",
			ean:      "5099750442227",
			language: 0,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
			},
			errContain: "parsing barcode-lookup response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
			require.NoError(t, err)

			product, err := client.GtinLookup(context.Background(), tt.ean, tt.language)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.errContain != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProduct, product)
		})
	}
}

func TestClient_UpcLookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "upc-lookup", r.URL.Query().Get("op"))
		assert.Equal(t, "078257310700", r.URL.Query().Get("upc"))
		assert.Equal(t, "1", r.URL.Query().Get("language"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"ean":"0078257310700","name":"Intex Pool","issuingCountry":"US"}]`))
	}))
	defer srv.Close()

	client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
	require.NoError(t, err)

	product, err := client.UpcLookup(context.Background(), "078257310700", 0)
	require.NoError(t, err)
	assert.Equal(t, "Intex Pool", product.Name)
	assert.Equal(t, "US", product.IssuingCountry)
}

func TestClient_UpcLookup_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.UpcLookup(context.Background(), "000000000000", 0)
	require.ErrorIs(t, err, eansearch.ErrProductNotFound)
}

func TestClient_IsbnLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		isbn     string
		handler  http.HandlerFunc
		wantErr  error
		wantName string
	}{
		{
			name: "found",
			isbn: "9780262033848",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "isbn-lookup", r.URL.Query().Get("op"))
				assert.Equal(t, "9780262033848", r.URL.Query().Get("isbn"))
				assert.Empty(t, r.URL.Query().Get("language"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"ean":"9780262033848","name":"Introduction to Algorithms","issuingCountry":"US"}]`))
			},
			wantName: "Introduction to Algorithms",
		},
		{
			name: "not found",
			isbn: "9780000000000",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			},
			wantErr: eansearch.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
			require.NoError(t, err)

			name, err := client.IsbnLookup(context.Background(), tt.isbn)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestClient_VerifyChecksum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ean       string
		valid     string
		wantValid bool
	}{
		{name: "valid checksum", ean: "5099750442227", valid: "1", wantValid: true},
		{name: "invalid checksum", ean: "5099750442228", valid: "0", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "verify-checksum", r.URL.Query().Get("op"))
				assert.Equal(t, tt.ean, r.URL.Query().Get("ean"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"ean":"` + tt.ean + `","valid":"` + tt.valid + `"}]`))
			}))
			defer srv.Close()

			client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
			require.NoError(t, err)

			valid, err := client.VerifyChecksum(context.Background(), tt.ean)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, valid)
		})
	}
}

func TestClient_VerifyChecksum_EmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
	require.NoError(t, err)

	valid, err := client.VerifyChecksum(context.Background(), "5099750442227")
	require.ErrorIs(t, err, eansearch.ErrProductNotFound)
	assert.False(t, valid)
}

func TestClient_IssuingCountry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ean         string
		handler     http.HandlerFunc
		wantErr     error
		wantCountry string
	}{
		{
			name: "found",
			ean:  "4006381333931",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "issuing-country", r.URL.Query().Get("op"))
				assert.Equal(t, "4006381333931", r.URL.Query().Get("ean"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"ean":"4006381333931","issuingCountry":"DE"}]`))
			},
			wantCountry: "DE",
		},
		{
			name: "not found",
			ean:  "9999999999999",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			},
			wantErr: eansearch.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := eansearch.New("test-token", eansearch.WithBaseURL(srv.URL))
			require.NoError(t, err)

			country, err := client.IssuingCountry(context.Background(), tt.ean)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCountry, country)
		})
	}
}
