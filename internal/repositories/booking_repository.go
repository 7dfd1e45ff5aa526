package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"tandoor/internal/apperrors"
	"tandoor/models"
	"tandoor/pkg/database"
	"tandoor/pkg/logger"
)

type BookingRepositoryInterface interface {
	CreateIfNoConflict(booking *models.Booking, buffer time.Duration) error
	GetByID(id string) (*models.Booking, error)
	ListByTable(tableID int) ([]*models.Booking, error)
	SetStatusIf(id string, from, to models.BookingStatus) (bool, error)
}

type BookingRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewBookingRepository(log *logger.Logger, db *database.DB) *BookingRepository {
	return &BookingRepository{
		logger: log.WithComponent("booking_repository"),
		db:     db,
	}
}

// CreateIfNoConflict re-runs the overlap check and inserts the booking
// inside one transaction, holding the table row lock for its duration.
// Two concurrent proposals for the same table serialize on that lock,
// so the second one always sees the first one's insert.
func (r *BookingRepository) CreateIfNoConflict(booking *models.Booking, buffer time.Duration) error {
	paddedStart, paddedEnd := booking.PaddedWindow(buffer)

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		var tableID int
		err := tx.QueryRow(`SELECT id FROM tables WHERE id = $1 FOR UPDATE`, booking.TableID).Scan(&tableID)
		if err == sql.ErrNoRows {
			return apperrors.NewNotFound("table", fmt.Sprintf("%d", booking.TableID))
		}
		if err != nil {
			return fmt.Errorf("failed to lock table row: %w", err)
		}

		var conflictID string
		err = tx.QueryRow(`
			SELECT id FROM bookings
			WHERE table_id = $1
			  AND status = 'ACTIVE'
			  AND (start_time - make_interval(secs => $4)) < $3
			  AND $2 < (end_time + make_interval(secs => $4))
			LIMIT 1
		`, booking.TableID, paddedStart, paddedEnd, buffer.Seconds()).Scan(&conflictID)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to check booking conflicts: %w", err)
		}
		if err == nil {
			return &apperrors.BookingConflictError{TableID: booking.TableID, BookingID: conflictID}
		}

		_, err = tx.Exec(`
			INSERT INTO bookings (id, table_id, guest_count, start_time, end_time, status, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`, booking.ID, booking.TableID, booking.GuestCount, booking.StartTime, booking.EndTime,
			booking.Status, booking.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Created booking", "booking_id", booking.ID, "table_id", booking.TableID)
	return nil
}

func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	booking := &models.Booking{}
	err := r.db.QueryRow(`
		SELECT id, table_id, guest_count, start_time, end_time, status, created_by, created_at
		FROM bookings
		WHERE id = $1
	`, id).Scan(&booking.ID, &booking.TableID, &booking.GuestCount, &booking.StartTime,
		&booking.EndTime, &booking.Status, &booking.CreatedBy, &booking.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("booking", id)
		}
		r.logger.Error("Failed to retrieve booking", "error", err, "booking_id", id)
		return nil, fmt.Errorf("failed to retrieve booking: %w", err)
	}
	return booking, nil
}

func (r *BookingRepository) ListByTable(tableID int) ([]*models.Booking, error) {
	rows, err := r.db.Query(`
		SELECT id, table_id, guest_count, start_time, end_time, status, created_by, created_at
		FROM bookings
		WHERE table_id = $1
		ORDER BY start_time
	`, tableID)
	if err != nil {
		r.logger.Error("Failed to query bookings", "error", err, "table_id", tableID)
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking := &models.Booking{}
		if err := rows.Scan(&booking.ID, &booking.TableID, &booking.GuestCount, &booking.StartTime,
			&booking.EndTime, &booking.Status, &booking.CreatedBy, &booking.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) SetStatusIf(id string, from, to models.BookingStatus) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE bookings
		SET status = $3
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		r.logger.Error("Failed to update booking status", "error", err, "booking_id", id)
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}
