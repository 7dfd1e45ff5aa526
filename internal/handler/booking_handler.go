package handler

import (
	"net/http"
	"time"

	"tandoor/internal/apperrors"
	"tandoor/internal/service"
	"tandoor/pkg/logger"
)

// BookingHandler exposes reservations over HTTP.
type BookingHandler struct {
	bookingService service.BookingServiceInterface
	logger         *logger.Logger
}

func NewBookingHandler(bookingService service.BookingServiceInterface, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         log.WithComponent("booking_handler"),
	}
}

type bookingWindowRequest struct {
	TableID    int       `json:"table_id"`
	GuestCount int       `json:"guest_count"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req bookingWindowRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(service.CreateBookingRequest{
		TableID:    req.TableID,
		GuestCount: req.GuestCount,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ActorID:    actorID(r),
	})
	if err != nil {
		h.logger.Warn("Failed to create booking", "table_id", req.TableID, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusCreated, booking)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// ValidateBooking handles POST /api/v1/bookings/validate. It runs the
// proposal-time conflict check without committing anything.
func (h *BookingHandler) ValidateBooking(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req bookingWindowRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	if err := h.bookingService.ValidateNewBooking(req.TableID, req.StartTime, req.EndTime); err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, map[string]bool{"available": true})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetBookingByID handles GET /api/v1/bookings/{id}
func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	booking, err := h.bookingService.GetByID(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, booking)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// ListByTable handles GET /api/v1/tables/{id}/bookings
func (h *BookingHandler) ListByTable(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id, err := tableIDFromPath(r)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	bookings, err := h.bookingService.ListByTable(id)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, bookings)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// CancelBooking handles POST /api/v1/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.retire(w, r, h.bookingService.CancelBooking)
}

// CompleteBooking handles POST /api/v1/bookings/{id}/complete
func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.retire(w, r, h.bookingService.CompleteBooking)
}

func (h *BookingHandler) retire(w http.ResponseWriter, r *http.Request, op func(string) error) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")
	if id == "" {
		writeServiceError(w, h.logger, reqCtx, apperrors.NewValidation("booking ID is required"))
		return
	}

	if err := op(id); err != nil {
		h.logger.Warn("Booking status change rejected", "booking_id", id, "error", err)
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	booking, err := h.bookingService.GetByID(id)
	if err != nil {
		writeServiceError(w, h.logger, reqCtx, err)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, booking)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
