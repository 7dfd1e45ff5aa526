package models

import "time"

// BookingStatus represents the lifecycle state of a reservation.
type BookingStatus string

const (
	BookingActive    BookingStatus = "ACTIVE"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// IsValid reports whether s is a known booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Booking is a future-dated claim on a table for the half-open time
// window [StartTime, EndTime).
type Booking struct {
	ID         string        `json:"booking_id" db:"id"`
	TableID    int           `json:"table_id" db:"table_id"`
	GuestCount int           `json:"guest_count" db:"guest_count"`
	StartTime  time.Time     `json:"start_time" db:"start_time"`
	EndTime    time.Time     `json:"end_time" db:"end_time"`
	Status     BookingStatus `json:"status" db:"status"`
	CreatedBy  string        `json:"created_by,omitempty" db:"created_by"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// PaddedWindow returns the booking window extended by buffer on each
// side, modelling turnover time between seatings.
func (b *Booking) PaddedWindow(buffer time.Duration) (time.Time, time.Time) {
	return b.StartTime.Add(-buffer), b.EndTime.Add(buffer)
}

// WindowsOverlap reports whether the half-open windows [s1, e1) and
// [s2, e2) intersect.
func WindowsOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
