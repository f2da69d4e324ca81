package repository

import (
	"errors"

	"restbar/internal/apperrors"
	"restbar/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// splitTolerance is one minor currency unit. Split subtotals must cover the
// order total exactly up to rounding of individual slices.
var splitTolerance = decimal.NewFromFloat(0.01)

type SplitAccountRepository interface {
	// CreateForOrder validates that the split subtotals add up to the order
	// total (within one cent) and creates all splits atomically, holding a
	// row lock on the order.
	CreateForOrder(orderID string, splits []models.SplitAccount) ([]models.SplitAccount, error)
}

type splitAccountRepository struct {
	db *gorm.DB
}

func NewSplitAccountRepository(db *gorm.DB) SplitAccountRepository {
	return &splitAccountRepository{db: db}
}

func (r *splitAccountRepository) CreateForOrder(orderID string, splits []models.SplitAccount) ([]models.SplitAccount, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return apperrors.Storage("failed to load order", err)
		}

		sum := decimal.Zero
		for _, s := range splits {
			sum = sum.Add(s.Subtotal)
		}
		if sum.Sub(order.Total).Abs().GreaterThan(splitTolerance) {
			return apperrors.Newf(apperrors.KindValidation,
				"split subtotals %s do not add up to order total %s", sum.StringFixed(2), order.Total.StringFixed(2))
		}

		for i := range splits {
			splits[i].OrderID = orderID
			splits[i].Status = string(models.SplitPending)
		}
		if err := tx.Create(&splits).Error; err != nil {
			return apperrors.Storage("failed to create split accounts", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return splits, nil
}
