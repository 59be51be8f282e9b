package handlers_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eansearch/eansearch-go/internal/api/handlers"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// watchContext builds an echo context for a request against the watch routes.
func watchContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWatchHandler_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		target          string
		setup           func(*fakeStore)
		wantStatus      int
		wantBody        string
		wantEnabledOnly bool
	}{
		{
			name:   "returns watches",
			target: "/api/v1/watches",
			setup: func(fs *fakeStore) {
				fs.addWatch(&domain.Watch{ID: "w1", Barcode: "5099902895529", Label: "Thriller (CD)"})
			},
			wantStatus: http.StatusOK,
			wantBody:   `"Thriller (CD)"`,
		},
		{
			name:            "enabled only filter",
			target:          "/api/v1/watches?enabled=true",
			setup:           func(*fakeStore) {},
			wantStatus:      http.StatusOK,
			wantBody:        `[]`,
			wantEnabledOnly: true,
		},
		{
			name:   "store error",
			target: "/api/v1/watches",
			setup: func(fs *fakeStore) {
				fs.listErr = errors.New("db error")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `listing watches`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := newFakeStore()
			tt.setup(fs)
			h := handlers.NewWatchHandler(fs)

			c, rec := watchContext(http.MethodGet, tt.target, "")
			require.NoError(t, h.List(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, tt.wantEnabledOnly, fs.lastEnabledOnly)
		})
	}
}

func TestWatchHandler_Get(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	fs.addWatch(&domain.Watch{ID: "w1", Barcode: "5099902895529"})
	h := handlers.NewWatchHandler(fs)

	t.Run("found by ID", func(t *testing.T) {
		c, rec := watchContext(http.MethodGet, "/api/v1/watches/w1", "")
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"w1"`)
	})

	t.Run("found by barcode", func(t *testing.T) {
		c, rec := watchContext(http.MethodGet, "/api/v1/watches/5099902895529", "")
		c.SetParamNames("id")
		c.SetParamValues("5099902895529")

		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"w1"`)
	})

	t.Run("not found", func(t *testing.T) {
		c, rec := watchContext(http.MethodGet, "/api/v1/watches/w-missing", "")
		c.SetParamNames("id")
		c.SetParamValues("w-missing")

		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "watch not found")
	})
}

func TestWatchHandler_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		setup      func(*fakeStore)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "creates watch",
			body:       `{"barcode":"5099902895529","label":"Thriller (CD)","language":1,"enabled":true}`,
			setup:      func(*fakeStore) {},
			wantStatus: http.StatusCreated,
			wantBody:   `"Thriller (CD)"`,
		},
		{
			name:       "trims whitespace around barcode",
			body:       `{"barcode":"  5099902895529 "}`,
			setup:      func(*fakeStore) {},
			wantStatus: http.StatusCreated,
			wantBody:   `"5099902895529"`,
		},
		{
			name:       "missing barcode",
			body:       `{"label":"No barcode"}`,
			setup:      func(*fakeStore) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "barcode is required",
		},
		{
			name:       "bad checksum",
			body:       `{"barcode":"5099902895521"}`,
			setup:      func(*fakeStore) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "checksum",
		},
		{
			name:       "unknown change field",
			body:       `{"barcode":"5099902895529","change_fields":["price"]}`,
			setup:      func(*fakeStore) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "unknown change field: price",
		},
		{
			name:       "quality threshold out of range",
			body:       `{"barcode":"5099902895529","quality_threshold":150}`,
			setup:      func(*fakeStore) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "quality_threshold",
		},
		{
			name: "store error",
			body: `{"barcode":"5099902895529"}`,
			setup: func(fs *fakeStore) {
				fs.createErr = errors.New("db error")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "creating watch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := newFakeStore()
			tt.setup(fs)
			h := handlers.NewWatchHandler(fs)

			c, rec := watchContext(http.MethodPost, "/api/v1/watches", tt.body)
			require.NoError(t, h.Create(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)

			if tt.wantStatus == http.StatusCreated {
				require.Len(t, fs.created, 1)
				assert.Equal(t, "5099902895529", fs.created[0].Barcode)
			}
		})
	}
}

func TestWatchHandler_Update(t *testing.T) {
	t.Parallel()

	t.Run("sets ID from path", func(t *testing.T) {
		t.Parallel()

		fs := newFakeStore()
		h := handlers.NewWatchHandler(fs)

		c, rec := watchContext(http.MethodPut, "/api/v1/watches/w1",
			`{"barcode":"5099902895529","label":"Renamed"}`)
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, fs.updated, 1)
		assert.Equal(t, "w1", fs.updated[0].ID)
		assert.Equal(t, "Renamed", fs.updated[0].Label)
	})

	t.Run("rejects invalid watch", func(t *testing.T) {
		t.Parallel()

		fs := newFakeStore()
		h := handlers.NewWatchHandler(fs)

		c, rec := watchContext(http.MethodPut, "/api/v1/watches/w1", `{"barcode":""}`)
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, fs.updated)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		fs := newFakeStore()
		fs.updateErr = errors.New("db error")
		h := handlers.NewWatchHandler(fs)

		c, rec := watchContext(http.MethodPut, "/api/v1/watches/w1", `{"barcode":"5099902895529"}`)
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "updating watch")
	})
}

func TestWatchHandler_SetEnabled(t *testing.T) {
	t.Parallel()

	t.Run("disables watch", func(t *testing.T) {
		t.Parallel()

		fs := newFakeStore()
		h := handlers.NewWatchHandler(fs)

		c, rec := watchContext(http.MethodPut, "/api/v1/watches/w1/enabled", `{"enabled":false}`)
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.SetEnabled(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "updated")

		enabled, ok := fs.enabledSet["w1"]
		require.True(t, ok)
		assert.False(t, enabled)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		fs := newFakeStore()
		fs.setEnabledErr = errors.New("db error")
		h := handlers.NewWatchHandler(fs)

		c, rec := watchContext(http.MethodPut, "/api/v1/watches/w1/enabled", `{"enabled":true}`)
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.SetEnabled(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "setting watch enabled")
	})
}

func TestWatchHandler_Delete(t *testing.T) {
	t.Parallel()

	t.Run("deletes watch", func(t *testing.T) {
		t.Parallel()

		fs := newFakeStore()
		fs.addWatch(&domain.Watch{ID: "w1", Barcode: "5099902895529"})
		h := handlers.NewWatchHandler(fs)

		c, rec := watchContext(http.MethodDelete, "/api/v1/watches/w1", "")
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{"w1"}, fs.deleted)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		fs := newFakeStore()
		fs.deleteErr = errors.New("db error")
		h := handlers.NewWatchHandler(fs)

		c, rec := watchContext(http.MethodDelete, "/api/v1/watches/w1", "")
		c.SetParamNames("id")
		c.SetParamValues("w1")

		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "deleting watch")
	})
}
