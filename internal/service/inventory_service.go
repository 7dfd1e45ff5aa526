package service

import (
	"errors"
	"io"
	"time"

	"tandoor/internal/apperrors"
	"tandoor/internal/baseline"
	"tandoor/internal/repositories"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// InventoryServiceInterface is the inventory ledger: the live record of
// on-hand ingredient quantities with daily baseline semantics.
type InventoryServiceInterface interface {
	CheckAvailability(deltas map[string]float64) (bool, error)
	Deduct(deltas map[string]float64) error
	Restock(name string, qty float64) error
	RestoreFromBaseline() error
	LoadBaselineFile(path string) error
	ImportSnapshot(r io.Reader) error
	ExportSnapshot(w io.Writer) error
	GetAll() ([]*models.InventoryEntry, error)
}

type InventoryService struct {
	repo   repositories.InventoryRepositoryInterface
	logger *logger.Logger

	// now is swappable so rollover behaviour is testable.
	now func() time.Time
}

func NewInventoryService(repo repositories.InventoryRepositoryInterface, log *logger.Logger) *InventoryService {
	return &InventoryService{
		repo:   repo,
		logger: log.WithComponent("inventory_service"),
		now:    time.Now,
	}
}

// businessDay truncates now to the UTC calendar day the ledger stamps
// its snapshots with.
func (s *InventoryService) businessDay() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ensureCurrentDay re-derives the ledger from the baseline when the
// stored snapshot date is older than today. It runs at the start of
// every business operation instead of relying on a background timer.
func (s *InventoryService) ensureCurrentDay() error {
	snapshot, ok, err := s.repo.SnapshotDate()
	if err != nil {
		return err
	}
	if !ok {
		// Empty ledger, nothing to roll over.
		return nil
	}
	if models.SameBusinessDay(snapshot, s.now()) {
		return nil
	}

	s.logger.Info("Day rollover detected, restoring inventory from baseline",
		"snapshot_date", snapshot.Format(baseline.DateLayout),
		"today", s.businessDay().Format(baseline.DateLayout))
	return s.repo.RestoreFromBaseline(s.businessDay())
}

// CheckAvailability reports whether on-hand stock covers every
// requested quantity. It is a pure read; a missing ingredient counts
// as unavailable.
func (s *InventoryService) CheckAvailability(deltas map[string]float64) (bool, error) {
	if err := s.ensureCurrentDay(); err != nil {
		return false, err
	}

	for name, required := range deltas {
		if required <= 0 {
			return false, apperrors.NewValidation("required quantity for %q must be positive", name)
		}
		entry, err := s.repo.GetByName(name)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		if entry.Quantity < required {
			return false, nil
		}
	}
	return true, nil
}

// Deduct subtracts the requested quantities as one atomic unit. The
// availability check is re-run inside the repository transaction, so a
// concurrent deduction cannot slip between check and subtract. On
// failure the ledger is unchanged.
func (s *InventoryService) Deduct(deltas map[string]float64) error {
	if err := s.ensureCurrentDay(); err != nil {
		return err
	}

	for name, required := range deltas {
		if required <= 0 {
			return apperrors.NewValidation("required quantity for %q must be positive", name)
		}
	}

	if err := s.repo.DeductAtomic(deltas); err != nil {
		s.logger.Warn("Inventory deduction failed", "error", err)
		return err
	}

	s.logger.Info("Inventory deducted", "ingredients", len(deltas))
	return nil
}

// Restock adds quantity to a single ingredient.
func (s *InventoryService) Restock(name string, qty float64) error {
	if qty <= 0 {
		return apperrors.NewValidation("restock quantity must be positive, got %.2f", qty)
	}
	if err := s.ensureCurrentDay(); err != nil {
		return err
	}
	return s.repo.Restock(name, qty)
}

// RestoreFromBaseline resets every ingredient to its baseline value
// regardless of current quantity and re-stamps the snapshot date.
func (s *InventoryService) RestoreFromBaseline() error {
	s.logger.Info("Restoring inventory from baseline")
	return s.repo.RestoreFromBaseline(s.businessDay())
}

// LoadBaselineFile seeds the ledger's baseline table from a
// line-oriented inventory file and resets live quantities to it.
func (s *InventoryService) LoadBaselineFile(path string) error {
	entries, err := baseline.ParseFile(path)
	if err != nil {
		return err
	}

	day := s.businessDay()
	seed := make([]*models.InventoryEntry, len(entries))
	for i, e := range entries {
		seed[i] = &models.InventoryEntry{
			Name:         e.Name,
			Quantity:     e.Quantity,
			Baseline:     e.Quantity,
			SnapshotDate: day,
		}
	}

	s.logger.Info("Loading inventory baseline", "path", path, "entries", len(seed))
	return s.repo.SeedBaseline(seed, day)
}

// ImportSnapshot seeds the ledger from a previously exported dated
// snapshot, stamping the snapshot's own business day. A stale snapshot
// restores to its quantities on the next operation's rollover, since
// quantity and baseline are seeded equal.
func (s *InventoryService) ImportSnapshot(r io.Reader) error {
	day, entries, err := baseline.ParseSnapshot(r)
	if err != nil {
		return err
	}

	seed := make([]*models.InventoryEntry, len(entries))
	for i, e := range entries {
		seed[i] = &models.InventoryEntry{
			Name:         e.Name,
			Quantity:     e.Quantity,
			Baseline:     e.Quantity,
			SnapshotDate: day,
		}
	}

	s.logger.Info("Importing inventory snapshot",
		"day", day.Format(baseline.DateLayout), "entries", len(seed))
	return s.repo.SeedBaseline(seed, day)
}

// ExportSnapshot writes the current ledger in the dated snapshot
// format: a yyyy-MM-dd header, a blank line, then one entry per line.
func (s *InventoryService) ExportSnapshot(w io.Writer) error {
	if err := s.ensureCurrentDay(); err != nil {
		return err
	}

	entries, err := s.repo.GetAll()
	if err != nil {
		return err
	}

	out := make([]baseline.Entry, len(entries))
	for i, e := range entries {
		out[i] = baseline.Entry{Name: e.Name, Quantity: e.Quantity}
	}
	return baseline.WriteSnapshot(w, s.businessDay(), out)
}

// GetAll lists the ledger after applying any pending day rollover.
func (s *InventoryService) GetAll() ([]*models.InventoryEntry, error) {
	if err := s.ensureCurrentDay(); err != nil {
		return nil, err
	}
	return s.repo.GetAll()
}
