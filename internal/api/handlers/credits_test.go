package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eansearch "github.com/eansearch/eansearch-go"
	"github.com/eansearch/eansearch-go/internal/api/handlers"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// fakeCreditsSource reports a fixed live balance.
type fakeCreditsSource struct {
	remaining int64
}

func (f *fakeCreditsSource) CreditsRemaining() int64 {
	return f.remaining
}

// mockCreditsProvider is a test double for CreditsProvider.
type mockCreditsProvider struct {
	sample *domain.CreditSample
	err    error
}

func (m *mockCreditsProvider) LatestCreditSample(_ context.Context) (*domain.CreditSample, error) {
	return m.sample, m.err
}

func newCreditsAPI(t *testing.T, src *fakeCreditsSource, provider *mockCreditsProvider) humatest.TestAPI {
	t.Helper()

	_, api := humatest.New(t)
	handlers.RegisterCreditRoutes(api, handlers.NewCreditsHandler(src, provider))
	return api
}

func TestGetCredits_WithSample(t *testing.T) {
	t.Parallel()

	sample := &domain.CreditSample{
		ID:        "cs1",
		Credits:   9500,
		SampledAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
	api := newCreditsAPI(t, &fakeCreditsSource{remaining: 9480}, &mockCreditsProvider{sample: sample})

	resp := api.Get("/api/v1/credits")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"remaining":9480`)
	assert.Contains(t, resp.Body.String(), `"credits":9500`)
}

func TestGetCredits_NoSampleYet(t *testing.T) {
	t.Parallel()

	api := newCreditsAPI(t, &fakeCreditsSource{remaining: eansearch.CreditsUnknown}, &mockCreditsProvider{})

	resp := api.Get("/api/v1/credits")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"remaining":-1`)
	assert.NotContains(t, resp.Body.String(), "last_sample")
}

func TestGetCredits_StoreError(t *testing.T) {
	t.Parallel()

	api := newCreditsAPI(t, &fakeCreditsSource{}, &mockCreditsProvider{err: errors.New("db error")})

	resp := api.Get("/api/v1/credits")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "fetching credit sample failed")
}
