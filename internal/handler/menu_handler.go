package handler

import (
	"net/http"

	"tandoor/models"
	"tandoor/pkg/logger"
)

// MenuCatalogInterface is the read-only menu surface the HTTP layer
// serves.
type MenuCatalogInterface interface {
	Items() []models.MenuItem
	PriceOf(name string) (models.MenuItem, error)
	RecipeOf(dish string) (map[string]float64, error)
}

// MenuHandler serves the static menu and recipe catalog.
type MenuHandler struct {
	catalog MenuCatalogInterface
	logger  *logger.Logger
}

func NewMenuHandler(catalog MenuCatalogInterface, log *logger.Logger) *MenuHandler {
	return &MenuHandler{
		catalog: catalog,
		logger:  log.WithComponent("menu_handler"),
	}
}

// GetMenu handles GET /api/v1/menu
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	writeJSONResponse(w, h.logger, http.StatusOK, h.catalog.Items())
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetItem handles GET /api/v1/menu/{name}, returning the item with its
// per-unit recipe.
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	name := r.PathValue("name")
	item, err := h.catalog.PriceOf(name)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	resp := struct {
		models.MenuItem
		Recipe map[string]float64 `json:"recipe,omitempty"`
	}{MenuItem: item}
	if recipe, err := h.catalog.RecipeOf(name); err == nil {
		resp.Recipe = recipe
	}

	writeJSONResponse(w, h.logger, http.StatusOK, resp)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
