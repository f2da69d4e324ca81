package services

import (
	"errors"
	"time"

	"restbar/internal/apperrors"
	"restbar/internal/events"
	"restbar/internal/models"
	"restbar/internal/repository"

	"gorm.io/gorm"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

type TableService interface {
	GetAll() ([]models.Table, error)
	GetByID(id string) (*models.Table, error)
	Create(table *models.Table) (*models.Table, error)
	Update(table *models.Table) (*models.Table, error)
	UpdatePosition(id string, x, y float64) (*models.Table, error)
	Deactivate(id string) (*models.Table, error)
	Occupy(tableID, waiterID string) (*models.Table, error)
	OpenAccount(tableID string) (*models.Account, error)
	CloseAccount(tableID string) (*models.Account, error)
	// OverrideStatus is the staff correction escape hatch; it bypasses the
	// occupancy graph on purpose.
	OverrideStatus(tableID, status string) (*models.Table, error)
}

type tableService struct {
	tableRepo   repository.TableRepository
	accountRepo repository.AccountRepository
	bus         events.Publisher
}

func NewTableService(tableRepo repository.TableRepository, accountRepo repository.AccountRepository, bus events.Publisher) TableService {
	return &tableService{tableRepo: tableRepo, accountRepo: accountRepo, bus: bus}
}

func (s *tableService) GetAll() ([]models.Table, error) {
	tables, err := s.tableRepo.GetAll()
	if err != nil {
		return nil, apperrors.Storage("failed to list tables", err)
	}
	return tables, nil
}

func (s *tableService) GetByID(id string) (*models.Table, error) {
	table, err := s.tableRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("table not found")
		}
		return nil, apperrors.Storage("failed to load table", err)
	}
	return table, nil
}

func (s *tableService) Create(table *models.Table) (*models.Table, error) {
	if table.Number <= 0 {
		return nil, apperrors.Validation("table number must be positive")
	}
	if table.Status == "" {
		table.Status = string(models.TableFree)
	}
	table.Active = true
	if err := s.tableRepo.Create(table); err != nil {
		return nil, apperrors.Storage("failed to create table", err)
	}
	return s.GetByID(table.ID)
}

func (s *tableService) Update(table *models.Table) (*models.Table, error) {
	if table.Status != "" && !models.ValidTableStatus(table.Status) {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown table status %q", table.Status)
	}
	if err := s.tableRepo.Update(table); err != nil {
		return nil, apperrors.Storage("failed to update table", err)
	}
	return s.publishAndReturn(table.ID)
}

func (s *tableService) UpdatePosition(id string, x, y float64) (*models.Table, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}
	if err := s.tableRepo.UpdatePosition(id, x, y); err != nil {
		return nil, apperrors.Storage("failed to update table position", err)
	}
	return s.publishAndReturn(id)
}

func (s *tableService) Deactivate(id string) (*models.Table, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}
	if err := s.tableRepo.Deactivate(id); err != nil {
		return nil, apperrors.Storage("failed to deactivate table", err)
	}
	return s.publishAndReturn(id)
}

func (s *tableService) Occupy(tableID, waiterID string) (*models.Table, error) {
	affected, err := s.tableRepo.Occupy(tableID, waiterID, nowFunc())
	if err != nil {
		return nil, apperrors.Storage("failed to occupy table", err)
	}
	if affected == 0 {
		// Distinguish a missing table from one that lost the race.
		if _, err := s.GetByID(tableID); err != nil {
			return nil, err
		}
		return nil, apperrors.Conflict("table is not available")
	}
	return s.publishAndReturn(tableID)
}

func (s *tableService) OpenAccount(tableID string) (*models.Account, error) {
	account, err := s.accountRepo.OpenForTable(tableID)
	if err != nil {
		return nil, err
	}
	if _, err := s.publishAndReturn(tableID); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *tableService) CloseAccount(tableID string) (*models.Account, error) {
	account, err := s.accountRepo.CloseForTable(tableID)
	if err != nil {
		return nil, err
	}
	if _, err := s.publishAndReturn(tableID); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *tableService) OverrideStatus(tableID, status string) (*models.Table, error) {
	if !models.ValidTableStatus(status) {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown table status %q", status)
	}
	if _, err := s.GetByID(tableID); err != nil {
		return nil, err
	}
	if err := s.tableRepo.SetStatus(tableID, status); err != nil {
		return nil, apperrors.Storage("failed to override table status", err)
	}
	return s.publishAndReturn(tableID)
}

func (s *tableService) publishAndReturn(tableID string) (*models.Table, error) {
	table, err := s.GetByID(tableID)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.TableUpdate, table)
	return table, nil
}
