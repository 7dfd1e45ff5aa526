package service

import (
	"fmt"

	"tandoor/internal/apperrors"
	"tandoor/internal/repositories"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// TableServiceInterface is the table allocator: capacity matching and
// status transitions for physical tables.
type TableServiceInterface interface {
	FindBestAvailable(requiredCapacity int) (*models.Table, error)
	Occupy(tableID int) error
	Reserve(tableID int) error
	Free(tableID int) error
	AddTable(table *models.Table) error
	GetByID(tableID int) (*models.Table, error)
	GetAll() ([]*models.Table, error)
}

type TableService struct {
	repo   repositories.TableRepositoryInterface
	logger *logger.Logger
}

func NewTableService(repo repositories.TableRepositoryInterface, log *logger.Logger) *TableService {
	return &TableService{
		repo:   repo,
		logger: log.WithComponent("table_service"),
	}
}

// FindBestAvailable returns the AVAILABLE table with the smallest
// capacity covering the party, ties broken by lowest id.
func (s *TableService) FindBestAvailable(requiredCapacity int) (*models.Table, error) {
	if requiredCapacity < 1 {
		return nil, apperrors.NewValidation("required capacity must be at least 1, got %d", requiredCapacity)
	}

	table, err := s.repo.FindSmallestAvailable(requiredCapacity)
	if err != nil {
		s.logger.Warn("No table available", "required_capacity", requiredCapacity)
		return nil, err
	}

	s.logger.Debug("Best-fit table found", "table_id", table.ID, "capacity", table.Capacity)
	return table, nil
}

// Occupy moves an AVAILABLE table to OCCUPIED. An already occupied or
// reserved table is a conflict.
func (s *TableService) Occupy(tableID int) error {
	ok, err := s.repo.SetStatusIf(tableID, []models.TableStatus{models.TableAvailable}, models.TableOccupied)
	if err != nil {
		return err
	}
	if !ok {
		table, err := s.repo.GetByID(tableID)
		if err != nil {
			return err
		}
		return apperrors.NewConflict("table", fmt.Sprintf("%d", tableID),
			fmt.Sprintf("cannot occupy while %s", table.Status))
	}

	s.logger.Info("Table occupied", "table_id", tableID)
	return nil
}

// Reserve marks a table RESERVED. Reserving an occupied table is a
// conflict; re-reserving a reserved one is a no-op.
func (s *TableService) Reserve(tableID int) error {
	ok, err := s.repo.SetStatusIf(tableID,
		[]models.TableStatus{models.TableAvailable, models.TableReserved}, models.TableReserved)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.repo.GetByID(tableID); err != nil {
			return err
		}
		return apperrors.NewConflict("table", fmt.Sprintf("%d", tableID), "cannot reserve while OCCUPIED")
	}

	s.logger.Info("Table reserved", "table_id", tableID)
	return nil
}

// Free idempotently returns a table to AVAILABLE.
func (s *TableService) Free(tableID int) error {
	ok, err := s.repo.SetStatusIf(tableID, nil, models.TableAvailable)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("table", fmt.Sprintf("%d", tableID))
	}

	s.logger.Info("Table freed", "table_id", tableID)
	return nil
}

func (s *TableService) AddTable(table *models.Table) error {
	if table.Capacity < 1 {
		return apperrors.NewValidation("table capacity must be at least 1, got %d", table.Capacity)
	}
	return s.repo.Add(table)
}

func (s *TableService) GetByID(tableID int) (*models.Table, error) {
	return s.repo.GetByID(tableID)
}

func (s *TableService) GetAll() ([]*models.Table, error) {
	return s.repo.GetAll()
}
