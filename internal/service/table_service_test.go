package service

import (
	"errors"
	"testing"

	"tandoor/internal/apperrors"
	"tandoor/models"
)

func newTableFixture() (*TableService, *fakeTableRepo) {
	repo := newFakeTableRepo(newFakeOrderRepo())
	return NewTableService(repo, testLogger()), repo
}

func TestFindBestAvailable(t *testing.T) {
	svc, repo := newTableFixture()
	repo.seed(1, 2, models.TableAvailable)
	repo.seed(2, 4, models.TableAvailable)
	repo.seed(3, 4, models.TableAvailable)
	repo.seed(4, 6, models.TableAvailable)
	repo.seed(5, 4, models.TableOccupied)

	tests := []struct {
		name     string
		capacity int
		wantID   int
		wantErr  error
	}{
		{"exact fit", 2, 1, nil},
		{"smallest covering, tie broken by lowest id", 3, 2, nil},
		{"skips occupied tables", 4, 2, nil},
		{"largest table", 6, 4, nil},
		{"party too big", 8, 0, apperrors.ErrNotFound},
		{"zero capacity", 0, 0, apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := svc.FindBestAvailable(tt.capacity)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindBestAvailable returned error: %v", err)
			}
			if table.ID != tt.wantID {
				t.Errorf("expected table %d, got %d", tt.wantID, table.ID)
			}
		})
	}
}

func TestOccupy(t *testing.T) {
	svc, repo := newTableFixture()
	repo.seed(1, 4, models.TableAvailable)

	if err := svc.Occupy(1); err != nil {
		t.Fatalf("first Occupy returned error: %v", err)
	}
	table, _ := repo.GetByID(1)
	if table.Status != models.TableOccupied {
		t.Fatalf("expected OCCUPIED, got %s", table.Status)
	}

	// The second claim loses the conditional update and sees a conflict.
	err := svc.Occupy(1)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict on second Occupy, got %v", err)
	}
}

func TestOccupy_ReservedTable(t *testing.T) {
	svc, repo := newTableFixture()
	repo.seed(1, 4, models.TableReserved)

	err := svc.Occupy(1)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict occupying a reserved table, got %v", err)
	}
}

func TestReserve(t *testing.T) {
	svc, repo := newTableFixture()
	repo.seed(1, 4, models.TableAvailable)
	repo.seed(2, 4, models.TableOccupied)

	if err := svc.Reserve(1); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	// Re-reserving is a no-op, not a conflict.
	if err := svc.Reserve(1); err != nil {
		t.Errorf("re-Reserve returned error: %v", err)
	}

	if err := svc.Reserve(2); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict reserving an occupied table, got %v", err)
	}
}

func TestFree(t *testing.T) {
	svc, repo := newTableFixture()
	repo.seed(1, 4, models.TableOccupied)

	if err := svc.Free(1); err != nil {
		t.Fatalf("Free returned error: %v", err)
	}
	table, _ := repo.GetByID(1)
	if table.Status != models.TableAvailable {
		t.Errorf("expected AVAILABLE, got %s", table.Status)
	}

	if err := svc.Free(99); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found freeing unknown table, got %v", err)
	}
}

func TestAddTable_RejectsBadCapacity(t *testing.T) {
	svc, _ := newTableFixture()
	err := svc.AddTable(&models.Table{ID: 1, Capacity: 0})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
