package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eansearch/eansearch-go/internal/store"
	"github.com/eansearch/eansearch-go/pkg/gtin"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// WatchHandler owns the watch CRUD routes.
type WatchHandler struct {
	store store.Store
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(s store.Store) *WatchHandler {
	return &WatchHandler{store: s}
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// validateWatch checks the fields a client controls. It returns an empty
// string when the watch is acceptable.
func validateWatch(w *domain.Watch) string {
	if w.Barcode == "" {
		return "barcode is required"
	}
	if !gtin.Valid(w.Barcode) {
		return "barcode failed checksum validation: " + w.Barcode
	}
	for _, f := range w.ChangeFields {
		if !domain.ValidTrackedField(f) {
			return "unknown change field: " + string(f)
		}
	}
	if w.QualityThreshold < 0 || w.QualityThreshold > 100 {
		return "quality_threshold must be between 0 and 100"
	}
	return ""
}

// List handles GET /api/v1/watches.
//
// @Summary List watches
// @Description Returns all watches, optionally restricted to enabled ones.
// @Tags watches
// @Produce json
// @Param enabled query string false "Return only enabled watches" Enums(true, false)
// @Success 200 {array} domain.Watch
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watches [get]
func (h *WatchHandler) List(c echo.Context) error {
	enabledOnly, _ := strconv.ParseBool(c.QueryParam("enabled"))

	watches, err := h.store.ListWatches(c.Request().Context(), enabledOnly)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "listing watches: "+err.Error())
	}
	if watches == nil {
		watches = []domain.Watch{}
	}
	return c.JSON(http.StatusOK, watches)
}

// Get handles GET /api/v1/watches/:id. The path value may be a watch UUID or
// a barcode; anything that passes GTIN checksum validation is resolved as a
// barcode.
//
// @Summary Get a watch
// @Description Returns a single watch by its UUID or by its barcode.
// @Tags watches
// @Produce json
// @Param id path string true "Watch UUID or barcode"
// @Success 200 {object} domain.Watch
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/watches/{id} [get]
func (h *WatchHandler) Get(c echo.Context) error {
	ref := c.Param("id")

	var (
		w   *domain.Watch
		err error
	)
	if gtin.Valid(ref) {
		w, err = h.store.GetWatchByBarcode(c.Request().Context(), ref)
	} else {
		w, err = h.store.GetWatch(c.Request().Context(), ref)
	}
	if err != nil {
		return jsonError(c, http.StatusNotFound, "watch not found")
	}
	return c.JSON(http.StatusOK, w)
}

// Create handles POST /api/v1/watches.
//
// @Summary Create a watch
// @Description Creates a new watch for the given barcode.
// @Tags watches
// @Accept json
// @Produce json
// @Param watch body domain.Watch true "Watch to create"
// @Success 201 {object} domain.Watch
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watches [post]
func (h *WatchHandler) Create(c echo.Context) error {
	var w domain.Watch
	if err := c.Bind(&w); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	w.Barcode = strings.TrimSpace(w.Barcode)
	if msg := validateWatch(&w); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	// The store assigns the ID; ignore any client-supplied one.
	w.ID = ""
	if err := h.store.CreateWatch(c.Request().Context(), &w); err != nil {
		return jsonError(c, http.StatusInternalServerError, "creating watch: "+err.Error())
	}
	return c.JSON(http.StatusCreated, w)
}

// Update handles PUT /api/v1/watches/:id.
//
// @Summary Update a watch
// @Description Replaces the configuration of an existing watch.
// @Tags watches
// @Accept json
// @Produce json
// @Param id path string true "Watch UUID"
// @Param watch body domain.Watch true "Updated watch"
// @Success 200 {object} domain.Watch
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watches/{id} [put]
func (h *WatchHandler) Update(c echo.Context) error {
	var w domain.Watch
	if err := c.Bind(&w); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	w.Barcode = strings.TrimSpace(w.Barcode)
	if msg := validateWatch(&w); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	w.ID = c.Param("id")
	if err := h.store.UpdateWatch(c.Request().Context(), &w); err != nil {
		return jsonError(c, http.StatusInternalServerError, "updating watch: "+err.Error())
	}
	return c.JSON(http.StatusOK, w)
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled" example:"true"`
}

// SetEnabled handles PUT /api/v1/watches/:id/enabled. Disabling a watch
// keeps its snapshot history but takes it out of the refresh rotation.
//
// @Summary Enable or disable a watch
// @Description Sets the enabled status of a watch.
// @Tags watches
// @Accept json
// @Produce json
// @Param id path string true "Watch UUID"
// @Param body body setEnabledRequest true "Enabled status"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watches/{id}/enabled [put]
func (h *WatchHandler) SetEnabled(c echo.Context) error {
	var req setEnabledRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	id := c.Param("id")
	if err := h.store.SetWatchEnabled(c.Request().Context(), id, req.Enabled); err != nil {
		return jsonError(c, http.StatusInternalServerError, "setting watch enabled: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /api/v1/watches/:id.
//
// @Summary Delete a watch
// @Description Deletes a watch and its snapshot history.
// @Tags watches
// @Param id path string true "Watch UUID"
// @Success 204
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watches/{id} [delete]
func (h *WatchHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteWatch(c.Request().Context(), c.Param("id")); err != nil {
		return jsonError(c, http.StatusInternalServerError, "deleting watch: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
