package repository

import (
	"errors"

	"restbar/internal/apperrors"
	"restbar/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemRepository interface {
	GetByID(id string) (*models.OrderItem, error)
	GetByOrderID(orderID string) ([]models.OrderItem, error)
	UpdateStatus(id, status string) error
	// BulkAdvance moves every item of the order currently in one of the from
	// statuses to the target status (the cascading update-by-filter).
	BulkAdvance(orderID string, from []string, to string) error
	// ReplaceForOrder swaps the order's item list wholesale and rewrites the
	// order's totals in the same transaction, holding a row lock on the
	// order. The replacement lands only while the order is still PENDING; a
	// transition that won the lock first makes it fail with a conflict.
	ReplaceForOrder(orderID string, items []models.OrderItem, subtotal, tax, total decimal.Decimal) error
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) GetByID(id string) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderItemRepository) GetByOrderID(orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *orderItemRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&models.OrderItem{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderItemRepository) BulkAdvance(orderID string, from []string, to string) error {
	return r.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND status IN ?", orderID, from).
		Update("status", to).Error
}

func (r *orderItemRepository) ReplaceForOrder(orderID string, items []models.OrderItem, subtotal, tax, total decimal.Decimal) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return apperrors.Storage("failed to load order", err)
		}
		if order.Status != string(models.OrderPending) {
			return apperrors.Conflict("order items can only be replaced while the order is pending")
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return apperrors.Storage("failed to delete order items", err)
		}
		for i := range items {
			items[i].OrderID = orderID
		}
		if err := tx.Create(&items).Error; err != nil {
			return apperrors.Storage("failed to create order items", err)
		}

		err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Updates(map[string]interface{}{
				"subtotal": subtotal,
				"tax":      tax,
				"total":    total,
			}).Error
		if err != nil {
			return apperrors.Storage("failed to update order totals", err)
		}
		return nil
	})
}
