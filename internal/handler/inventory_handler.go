package handler

import (
	"net/http"

	"tandoor/internal/service"
	"tandoor/pkg/logger"
)

// InventoryHandler exposes the ingredient ledger over HTTP.
type InventoryHandler struct {
	inventoryService service.InventoryServiceInterface
	logger           *logger.Logger
}

func NewInventoryHandler(inventoryService service.InventoryServiceInterface, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           log.WithComponent("inventory_handler"),
	}
}

type restockRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// GetAll handles GET /api/v1/inventory
func (h *InventoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	entries, err := h.inventoryService.GetAll()
	if err != nil {
		h.logger.Error("Failed to list inventory", "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, entries)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Restock handles POST /api/v1/inventory/restock
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req restockRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	if err := h.inventoryService.Restock(req.Name, req.Quantity); err != nil {
		h.logger.Warn("Restock rejected", "ingredient", req.Name, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, map[string]string{"status": "restocked"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Restore handles POST /api/v1/inventory/restore. Every ingredient is
// reset to its baseline quantity.
func (h *InventoryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if err := h.inventoryService.RestoreFromBaseline(); err != nil {
		h.logger.Error("Baseline restore failed", "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, map[string]string{"status": "restored"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// ImportSnapshot handles POST /api/v1/inventory/snapshot. The body is
// the same dated plain-text format the GET side serves.
func (h *InventoryHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	defer r.Body.Close()
	if err := h.inventoryService.ImportSnapshot(r.Body); err != nil {
		h.logger.Warn("Snapshot import rejected", "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, map[string]string{"status": "imported"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Snapshot handles GET /api/v1/inventory/snapshot, serving the ledger
// in the dated plain-text format.
func (h *InventoryHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.inventoryService.ExportSnapshot(w); err != nil {
		h.logger.Error("Snapshot export failed", "error", err)
		reqCtx.StatusCode = http.StatusInternalServerError
		h.logger.LogResponse(reqCtx)
		return
	}

	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
