package handler

import (
	"net/http"
	"strconv"

	"tandoor/internal/apperrors"
	"tandoor/internal/service"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// TableHandler exposes table setup and allocation over HTTP.
type TableHandler struct {
	tableService service.TableServiceInterface
	logger       *logger.Logger
}

func NewTableHandler(tableService service.TableServiceInterface, log *logger.Logger) *TableHandler {
	return &TableHandler{
		tableService: tableService,
		logger:       log.WithComponent("table_handler"),
	}
}

type addTableRequest struct {
	ID       int `json:"id"`
	Capacity int `json:"capacity"`
}

func tableIDFromPath(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, apperrors.NewValidation("table ID must be an integer, got %q", r.PathValue("id"))
	}
	return id, nil
}

// AddTable handles POST /api/v1/tables
func (h *TableHandler) AddTable(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req addTableRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	table := &models.Table{ID: req.ID, Capacity: req.Capacity, Status: models.TableAvailable}
	if err := h.tableService.AddTable(table); err != nil {
		h.logger.Warn("Failed to add table", "table_id", req.ID, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusCreated, table)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// GetAllTables handles GET /api/v1/tables
func (h *TableHandler) GetAllTables(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	tables, err := h.tableService.GetAll()
	if err != nil {
		h.logger.Error("Failed to list tables", "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, tables)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetTableByID handles GET /api/v1/tables/{id}
func (h *TableHandler) GetTableByID(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id, err := tableIDFromPath(r)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	table, err := h.tableService.GetByID(id)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, table)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// FindBestAvailable handles GET /api/v1/tables/best?capacity=N
func (h *TableHandler) FindBestAvailable(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	capacity, err := strconv.Atoi(r.URL.Query().Get("capacity"))
	if err != nil {
		writeServiceError(w, h.logger, reqCtx,
			apperrors.NewValidation("capacity query parameter must be an integer"))
		return
	}

	table, err := h.tableService.FindBestAvailable(capacity)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, table)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Occupy handles POST /api/v1/tables/{id}/occupy
func (h *TableHandler) Occupy(w http.ResponseWriter, r *http.Request) {
	h.mutateStatus(w, r, h.tableService.Occupy)
}

// Reserve handles POST /api/v1/tables/{id}/reserve
func (h *TableHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	h.mutateStatus(w, r, h.tableService.Reserve)
}

// Free handles POST /api/v1/tables/{id}/free
func (h *TableHandler) Free(w http.ResponseWriter, r *http.Request) {
	h.mutateStatus(w, r, h.tableService.Free)
}

func (h *TableHandler) mutateStatus(w http.ResponseWriter, r *http.Request, op func(int) error) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id, err := tableIDFromPath(r)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	if err := op(id); err != nil {
		h.logger.Warn("Table status change rejected", "table_id", id, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	table, err := h.tableService.GetByID(id)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, table)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
