package repository

import (
	"errors"

	"restbar/internal/apperrors"
	"restbar/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	CreatePending(payment *models.Payment) error
	GetByOrderID(orderID string) ([]models.Payment, error)
	// Settle records a COMPLETED payment against the order and refreshes the
	// order's payment status, holding a row lock on the order so concurrent
	// payments cannot push the completed sum past the total.
	Settle(orderID string, amount decimal.Decimal, method string) (*models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreatePending(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepository) GetByOrderID(orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("order_id = ?", orderID).Order("created_at asc").Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Settle(orderID string, amount decimal.Decimal, method string) (*models.Payment, error) {
	var payment *models.Payment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return apperrors.Storage("failed to load order", err)
		}

		var payments []models.Payment
		if err := tx.Where("order_id = ?", orderID).Find(&payments).Error; err != nil {
			return apperrors.Storage("failed to load payments", err)
		}

		paid := sumCompleted(payments)
		remaining := order.Total.Sub(paid)
		if amount.GreaterThan(remaining) {
			return apperrors.Newf(apperrors.KindValidation,
				"payment of %s exceeds remaining balance %s", amount.StringFixed(2), remaining.StringFixed(2))
		}

		payment = &models.Payment{
			OrderID: orderID,
			Amount:  amount,
			Method:  method,
			Status:  string(models.PaymentStateCompleted),
		}
		if err := tx.Create(payment).Error; err != nil {
			return apperrors.Storage("failed to create payment", err)
		}

		status := string(models.PaymentPartial)
		if paid.Add(amount).GreaterThanOrEqual(order.Total) {
			status = string(models.PaymentPaid)
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("payment_status", status).Error; err != nil {
			return apperrors.Storage("failed to update payment status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func sumCompleted(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == string(models.PaymentStateCompleted) {
			total = total.Add(p.Amount)
		}
	}
	return total
}
