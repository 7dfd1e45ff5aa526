package service

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tandoor/internal/apperrors"
)

var (
	today     = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	yesterday = today.AddDate(0, 0, -1)
)

func newLedger(repo *fakeInventoryRepo) *InventoryService {
	s := NewInventoryService(repo, testLogger())
	s.now = func() time.Time { return today.Add(12 * time.Hour) }
	return s
}

func TestDeduct_InsufficientLeavesLedgerUnchanged(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.seed("Paneer", 300, 300, today)
	repo.seed("Yogurt", 500, 500, today)
	ledger := newLedger(repo)

	// Two units of a dish needing 250 Paneer each: 500 > 300 on hand.
	err := ledger.Deduct(map[string]float64{"Paneer": 500, "Yogurt": 100})

	var insufficient *apperrors.InsufficientIngredientsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientIngredientsError, got %v", err)
	}
	if insufficient.Ingredient != "Paneer" || insufficient.Required != 500 || insufficient.Available != 300 {
		t.Errorf("unexpected error detail: %+v", insufficient)
	}
	if !errors.Is(err, apperrors.ErrBusinessRule) {
		t.Errorf("expected error to unwrap to ErrBusinessRule")
	}

	// No partial effect: both ingredients untouched.
	paneer, _ := repo.GetByName("Paneer")
	yogurt, _ := repo.GetByName("Yogurt")
	if paneer.Quantity != 300 {
		t.Errorf("Paneer changed on failed deduct: %.2f", paneer.Quantity)
	}
	if yogurt.Quantity != 500 {
		t.Errorf("Yogurt changed on failed deduct: %.2f", yogurt.Quantity)
	}
}

func TestDeduct_Success(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.seed("Paneer", 300, 300, today)
	ledger := newLedger(repo)

	if err := ledger.Deduct(map[string]float64{"Paneer": 250}); err != nil {
		t.Fatalf("Deduct returned error: %v", err)
	}

	entry, _ := repo.GetByName("Paneer")
	if entry.Quantity != 50 {
		t.Errorf("expected 50 remaining, got %.2f", entry.Quantity)
	}
}

func TestDeduct_ConcurrentNeverNegative(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.seed("Paneer", 300, 300, today)
	ledger := newLedger(repo)

	var wg sync.WaitGroup
	successes := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Deduct(map[string]float64{"Paneer": 50}); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	succeeded := 0
	for range successes {
		succeeded++
	}
	if succeeded != 6 {
		t.Errorf("expected exactly 6 deductions of 50 from 300, got %d", succeeded)
	}

	entry, _ := repo.GetByName("Paneer")
	if entry.Quantity != 0 {
		t.Errorf("expected 0 remaining, got %.2f", entry.Quantity)
	}
}

func TestCheckAvailability(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.seed("Paneer", 300, 300, today)
	ledger := newLedger(repo)

	tests := []struct {
		name   string
		deltas map[string]float64
		want   bool
	}{
		{"enough stock", map[string]float64{"Paneer": 300}, true},
		{"shortfall", map[string]float64{"Paneer": 301}, false},
		{"unknown ingredient", map[string]float64{"Ghee": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.CheckAvailability(tt.deltas)
			if err != nil {
				t.Fatalf("CheckAvailability returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	// A pure read: nothing was deducted.
	entry, _ := repo.GetByName("Paneer")
	if entry.Quantity != 300 {
		t.Errorf("CheckAvailability mutated the ledger: %.2f", entry.Quantity)
	}
}

func TestRestoreFromBaseline(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.seed("Paneer", 12, 300, today)
	repo.seed("Chicken", 999, 450, today)
	ledger := newLedger(repo)

	if err := ledger.RestoreFromBaseline(); err != nil {
		t.Fatalf("RestoreFromBaseline returned error: %v", err)
	}

	for name, want := range map[string]float64{"Paneer": 300, "Chicken": 450} {
		entry, _ := repo.GetByName(name)
		if entry.Quantity != want {
			t.Errorf("%s: expected baseline %.2f, got %.2f", name, want, entry.Quantity)
		}
		if !entry.SnapshotDate.Equal(today) {
			t.Errorf("%s: snapshot date not re-stamped: %v", name, entry.SnapshotDate)
		}
	}
}

func TestDayRollover_RestoresBeforeOperating(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.seed("Paneer", 10, 300, yesterday)
	ledger := newLedger(repo)

	// The stale snapshot forces a restore to 300 before the deduction
	// of 250 is applied.
	if err := ledger.Deduct(map[string]float64{"Paneer": 250}); err != nil {
		t.Fatalf("Deduct returned error: %v", err)
	}

	entry, _ := repo.GetByName("Paneer")
	if entry.Quantity != 50 {
		t.Errorf("expected 50 after rollover + deduct, got %.2f", entry.Quantity)
	}
	if !entry.SnapshotDate.Equal(today) {
		t.Errorf("snapshot date not rolled over: %v", entry.SnapshotDate)
	}
}

func TestLoadBaselineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.txt")
	content := "Paneer - 300\nBasmati Rice - 2000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write baseline file: %v", err)
	}

	repo := newFakeInventoryRepo()
	ledger := newLedger(repo)

	if err := ledger.LoadBaselineFile(path); err != nil {
		t.Fatalf("LoadBaselineFile returned error: %v", err)
	}

	entry, err := repo.GetByName("Basmati Rice")
	if err != nil {
		t.Fatalf("expected Basmati Rice to be seeded: %v", err)
	}
	if entry.Quantity != 2000 || entry.Baseline != 2000 {
		t.Errorf("unexpected seeded entry: %+v", entry)
	}
}

func TestImportSnapshot(t *testing.T) {
	repo := newFakeInventoryRepo()
	ledger := newLedger(repo)

	input := "2026-09-01\n\nPaneer - 300\nBasmati Rice - 2000\n"
	if err := ledger.ImportSnapshot(strings.NewReader(input)); err != nil {
		t.Fatalf("ImportSnapshot returned error: %v", err)
	}

	entry, err := repo.GetByName("Paneer")
	if err != nil {
		t.Fatalf("expected Paneer to be seeded: %v", err)
	}
	if entry.Quantity != 300 || entry.Baseline != 300 {
		t.Errorf("unexpected seeded entry: %+v", entry)
	}
	if !entry.SnapshotDate.Equal(today) {
		t.Errorf("expected snapshot date from header, got %v", entry.SnapshotDate)
	}
}

func TestImportSnapshot_StaleDateRollsOver(t *testing.T) {
	repo := newFakeInventoryRepo()
	ledger := newLedger(repo)

	input := "2026-08-31\n\nPaneer - 300\n"
	if err := ledger.ImportSnapshot(strings.NewReader(input)); err != nil {
		t.Fatalf("ImportSnapshot returned error: %v", err)
	}

	// The next business operation sees the stale date and re-stamps.
	if _, err := ledger.GetAll(); err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}

	entry, _ := repo.GetByName("Paneer")
	if entry.Quantity != 300 {
		t.Errorf("expected baseline quantity after rollover, got %.2f", entry.Quantity)
	}
	if !entry.SnapshotDate.Equal(today) {
		t.Errorf("snapshot date not rolled over: %v", entry.SnapshotDate)
	}
}

func TestImportSnapshot_BadHeader(t *testing.T) {
	repo := newFakeInventoryRepo()
	ledger := newLedger(repo)

	err := ledger.ImportSnapshot(strings.NewReader("Paneer - 300\n"))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for missing date header, got %v", err)
	}
}

func TestExportSnapshot(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.seed("Paneer", 300, 300, today)
	ledger := newLedger(repo)

	var buf bytes.Buffer
	if err := ledger.ExportSnapshot(&buf); err != nil {
		t.Fatalf("ExportSnapshot returned error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "2026-09-01\n\n") {
		t.Errorf("snapshot missing date header: %q", out)
	}
	if !strings.Contains(out, "Paneer - 300") {
		t.Errorf("snapshot missing entry: %q", out)
	}
}
