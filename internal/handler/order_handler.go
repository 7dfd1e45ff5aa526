package handler

import (
	"net/http"

	"tandoor/internal/service"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// OrderHandler exposes the order lifecycle over HTTP.
type OrderHandler struct {
	orderService service.OrderServiceInterface
	logger       *logger.Logger
}

func NewOrderHandler(orderService service.OrderServiceInterface, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       log.WithComponent("order_handler"),
	}
}

type createOrderRequest struct {
	TableID int `json:"table_id"`
}

type addLineItemRequest struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req createOrderRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	order, err := h.orderService.CreateOrder(req.TableID, actorID(r))
	if err != nil {
		h.logger.Warn("Failed to create order", "table_id", req.TableID, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusCreated, order)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// AddLineItem handles POST /api/v1/orders/{id}/items
func (h *OrderHandler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req addLineItemRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	order, err := h.orderService.AddLineItem(r.PathValue("id"), req.ItemName, req.Quantity)
	if err != nil {
		h.logger.Warn("Failed to add line item",
			"order_id", r.PathValue("id"), "item", req.ItemName, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// TransitionStatus handles POST /api/v1/orders/{id}/status
func (h *OrderHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req transitionRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	order, err := h.orderService.TransitionStatus(r.PathValue("id"), models.OrderStatus(req.Status))
	if err != nil {
		h.logger.Warn("Failed to transition order",
			"order_id", r.PathValue("id"), "target_status", req.Status, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// CancelOrder handles POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	order, err := h.orderService.CancelOrder(r.PathValue("id"))
	if err != nil {
		h.logger.Warn("Failed to cancel order", "order_id", r.PathValue("id"), "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetOrderByID handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	order, err := h.orderService.GetOrderByID(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetActiveByTable handles GET /api/v1/tables/{id}/orders
func (h *OrderHandler) GetActiveByTable(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id, err := tableIDFromPath(r)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	orders, err := h.orderService.GetActiveByTable(id)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, orders)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetAllOrders handles GET /api/v1/orders
func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		h.logger.Error("Failed to list orders", "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, orders)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
