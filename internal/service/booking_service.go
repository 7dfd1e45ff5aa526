package service

import (
	"time"

	"github.com/google/uuid"

	"tandoor/internal/apperrors"
	"tandoor/internal/repositories"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// DefaultTurnoverBuffer pads each side of a reservation window to
// leave time for table turnover between seatings.
const DefaultTurnoverBuffer = 15 * time.Minute

// BookingServiceInterface validates and commits table reservations.
type BookingServiceInterface interface {
	ValidateNewBooking(tableID int, start, end time.Time) error
	CreateBooking(req CreateBookingRequest) (*models.Booking, error)
	CancelBooking(bookingID string) error
	CompleteBooking(bookingID string) error
	GetByID(bookingID string) (*models.Booking, error)
	ListByTable(tableID int) ([]*models.Booking, error)
}

// CreateBookingRequest carries a reservation proposal.
type CreateBookingRequest struct {
	TableID    int       `json:"table_id"`
	GuestCount int       `json:"guest_count"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	ActorID    string    `json:"-"`
}

type BookingService struct {
	bookingRepo repositories.BookingRepositoryInterface
	tableRepo   repositories.TableRepositoryInterface
	buffer      time.Duration
	logger      *logger.Logger
}

func NewBookingService(bookingRepo repositories.BookingRepositoryInterface,
	tableRepo repositories.TableRepositoryInterface, buffer time.Duration, log *logger.Logger,
) *BookingService {
	if buffer < 0 {
		buffer = DefaultTurnoverBuffer
	}
	return &BookingService{
		bookingRepo: bookingRepo,
		tableRepo:   tableRepo,
		buffer:      buffer,
		logger:      log.WithComponent("booking_service"),
	}
}

// ValidateNewBooking checks a proposed window against every ACTIVE
// booking on the table, padding both sides by the turnover buffer.
// This is the proposal-time check; CreateBooking re-validates at
// commit time.
func (s *BookingService) ValidateNewBooking(tableID int, start, end time.Time) error {
	if !start.Before(end) {
		return apperrors.NewValidation("booking start must be before end")
	}
	if _, err := s.tableRepo.GetByID(tableID); err != nil {
		return err
	}

	bookings, err := s.bookingRepo.ListByTable(tableID)
	if err != nil {
		return err
	}

	paddedStart, paddedEnd := start.Add(-s.buffer), end.Add(s.buffer)
	for _, b := range bookings {
		if b.Status != models.BookingActive {
			continue
		}
		bookedStart, bookedEnd := b.PaddedWindow(s.buffer)
		if models.WindowsOverlap(paddedStart, paddedEnd, bookedStart, bookedEnd) {
			s.logger.Warn("Booking window conflicts",
				"table_id", tableID,
				"conflicting_booking", b.ID)
			return &apperrors.BookingConflictError{TableID: tableID, BookingID: b.ID}
		}
	}
	return nil
}

// CreateBooking commits a reservation. The conflict check runs again
// inside the repository transaction so two concurrent proposals for
// the same table and time cannot both commit.
func (s *BookingService) CreateBooking(req CreateBookingRequest) (*models.Booking, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.NewValidation("booking start must be before end")
	}
	if req.GuestCount < 1 {
		return nil, apperrors.NewValidation("guest count must be at least 1, got %d", req.GuestCount)
	}

	table, err := s.tableRepo.GetByID(req.TableID)
	if err != nil {
		return nil, err
	}
	if table.Capacity < req.GuestCount {
		return nil, apperrors.NewBusinessRule("table %d seats %d, cannot host %d guests",
			table.ID, table.Capacity, req.GuestCount)
	}

	booking := &models.Booking{
		ID:         uuid.NewString(),
		TableID:    req.TableID,
		GuestCount: req.GuestCount,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     models.BookingActive,
		CreatedBy:  req.ActorID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.bookingRepo.CreateIfNoConflict(booking, s.buffer); err != nil {
		s.logger.Warn("Booking creation failed", "table_id", req.TableID, "error", err)
		return nil, err
	}

	s.logger.Info("Booking created",
		"booking_id", booking.ID,
		"table_id", booking.TableID,
		"start", booking.StartTime,
		"end", booking.EndTime)
	return booking, nil
}

// CancelBooking retires an ACTIVE booking. If the table was only
// RESERVED it goes back to AVAILABLE.
func (s *BookingService) CancelBooking(bookingID string) error {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return err
	}

	ok, err := s.bookingRepo.SetStatusIf(bookingID, models.BookingActive, models.BookingCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewBusinessRule("booking %s is already %s", bookingID, booking.Status)
	}

	// Best effort: release the table when the reservation was the only
	// claim on it.
	if _, err := s.tableRepo.SetStatusIf(booking.TableID,
		[]models.TableStatus{models.TableReserved}, models.TableAvailable); err != nil {
		s.logger.Warn("Failed to release reserved table after cancellation",
			"table_id", booking.TableID, "error", err)
	}

	s.logger.Info("Booking cancelled", "booking_id", bookingID, "table_id", booking.TableID)
	return nil
}

// CompleteBooking marks the party as seated: the booking completes and
// the table becomes OCCUPIED.
func (s *BookingService) CompleteBooking(bookingID string) error {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return err
	}

	ok, err := s.bookingRepo.SetStatusIf(bookingID, models.BookingActive, models.BookingCompleted)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewBusinessRule("booking %s is already %s", bookingID, booking.Status)
	}

	ok, err = s.tableRepo.SetStatusIf(booking.TableID,
		[]models.TableStatus{models.TableAvailable, models.TableReserved}, models.TableOccupied)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("Completed booking for a table that is already occupied",
			"booking_id", bookingID, "table_id", booking.TableID)
	}

	s.logger.Info("Booking completed", "booking_id", bookingID, "table_id", booking.TableID)
	return nil
}

func (s *BookingService) GetByID(bookingID string) (*models.Booking, error) {
	return s.bookingRepo.GetByID(bookingID)
}

func (s *BookingService) ListByTable(tableID int) ([]*models.Booking, error) {
	if _, err := s.tableRepo.GetByID(tableID); err != nil {
		return nil, err
	}
	return s.bookingRepo.ListByTable(tableID)
}
