package repository

import (
	"time"

	"restbar/internal/models"

	"gorm.io/gorm"
)

type TableRepository interface {
	Create(table *models.Table) error
	GetByID(id string) (*models.Table, error)
	GetAll() ([]models.Table, error)
	Update(table *models.Table) error
	// Occupy is a compare-and-swap: it succeeds only when the table is still
	// LIBRE, reporting the number of rows it moved.
	Occupy(id, waiterID string, at time.Time) (int64, error)
	// AdvanceStatus moves the table from any of the given statuses to the
	// target status. Zero rows affected means the table was not in a source
	// status (or does not exist).
	AdvanceStatus(id string, from []string, to string) (int64, error)
	// SetStatus is the administrative override that bypasses the graph.
	SetStatus(id, status string) error
	UpdatePosition(id string, x, y float64) error
	Deactivate(id string) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(table *models.Table) error {
	return r.db.Create(table).Error
}

func (r *tableRepository) GetByID(id string) (*models.Table, error) {
	var table models.Table
	err := r.db.Preload("Zone").Preload("Waiter").Preload("Accounts").
		First(&table, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) GetAll() ([]models.Table, error) {
	var tables []models.Table
	err := r.db.Preload("Zone").Preload("Accounts", "status = ?", string(models.AccountActive)).
		Order("number asc").Find(&tables).Error
	return tables, err
}

func (r *tableRepository) Update(table *models.Table) error {
	return r.db.Save(table).Error
}

func (r *tableRepository) Occupy(id, waiterID string, at time.Time) (int64, error) {
	res := r.db.Model(&models.Table{}).
		Where("id = ? AND status = ?", id, string(models.TableFree)).
		Updates(map[string]interface{}{
			"status":      string(models.TableOccupied),
			"waiter_id":   waiterID,
			"occupied_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *tableRepository) AdvanceStatus(id string, from []string, to string) (int64, error) {
	res := r.db.Model(&models.Table{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *tableRepository) SetStatus(id, status string) error {
	return r.db.Model(&models.Table{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *tableRepository) UpdatePosition(id string, x, y float64) error {
	return r.db.Model(&models.Table{}).Where("id = ?", id).
		Updates(map[string]interface{}{"x": x, "y": y}).Error
}

func (r *tableRepository) Deactivate(id string) error {
	return r.db.Model(&models.Table{}).Where("id = ?", id).
		Update("active", false).Error
}
