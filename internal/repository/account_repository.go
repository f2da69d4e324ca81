package repository

import (
	"errors"
	"time"

	"restbar/internal/apperrors"
	"restbar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	GetByID(id string) (*models.Account, error)
	// OpenForTable creates a SHARED ACTIVE account for an OCUPADA table and
	// advances the table to EN_PEDIDO, all in one transaction. Fails with a
	// conflict when an ACTIVE account already exists or the table is not
	// OCUPADA.
	OpenForTable(tableID string) (*models.Account, error)
	// CloseForTable closes the table's ACTIVE account and resets the table
	// to LIBRE in one transaction.
	CloseForTable(tableID string) (*models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByID(id string) (*models.Account, error) {
	var account models.Account
	err := r.db.First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) OpenForTable(tableID string) (*models.Account, error) {
	var account *models.Account
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Lock the table row so concurrent opens serialize here.
		var table models.Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&table, "id = ?", tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("table not found")
			}
			return apperrors.Storage("failed to load table", err)
		}
		if table.Status != string(models.TableOccupied) {
			return apperrors.Conflict("table is not occupied")
		}

		var open int64
		if err := tx.Model(&models.Account{}).
			Where("table_id = ? AND status = ?", tableID, string(models.AccountActive)).
			Count(&open).Error; err != nil {
			return apperrors.Storage("failed to check open accounts", err)
		}
		if open > 0 {
			return apperrors.Conflict("table already has an open account")
		}

		account = &models.Account{
			Type:     string(models.AccountShared),
			Status:   string(models.AccountActive),
			TableID:  &tableID,
			OpenedAt: time.Now(),
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Storage("failed to create account", err)
		}

		if err := tx.Model(&models.Table{}).Where("id = ?", tableID).
			Update("status", string(models.TableOrdering)).Error; err != nil {
			return apperrors.Storage("failed to update table status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) CloseForTable(tableID string) (*models.Account, error) {
	var account *models.Account
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var found models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("table_id = ? AND status = ?", tableID, string(models.AccountActive)).
			First(&found).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Conflict("table has no open account")
			}
			return apperrors.Storage("failed to load account", err)
		}

		now := time.Now()
		found.Status = string(models.AccountClosed)
		found.ClosedAt = &now
		if err := tx.Save(&found).Error; err != nil {
			return apperrors.Storage("failed to close account", err)
		}

		if err := tx.Model(&models.Table{}).Where("id = ?", tableID).
			Updates(map[string]interface{}{
				"status":      string(models.TableFree),
				"waiter_id":   nil,
				"occupied_at": nil,
			}).Error; err != nil {
			return apperrors.Storage("failed to free table", err)
		}
		account = &found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
