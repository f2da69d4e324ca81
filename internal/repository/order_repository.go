package repository

import (
	"restbar/internal/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	// CreateGraph persists the order together with its items (gorm saves
	// associations inside a single transaction).
	CreateGraph(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll() ([]models.Order, error)
	// AdvanceStatus is a compare-and-swap guard: the update lands only when
	// the order is still in one of the from statuses. Zero rows affected
	// means a concurrent transition (or a missing order) won the race.
	AdvanceStatus(id string, from []string, to string) (int64, error)
	// CountOpenOnTable counts orders on the table that are neither
	// DELIVERED nor CANCELLED, excluding the given order.
	CountOpenOnTable(tableID, excludeOrderID string) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateGraph(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Preload("Table").
		Preload("Table.Zone").
		Preload("User").
		Preload("Customer").
		Preload("Account").
		Preload("Payments").
		Preload("SplitAccounts").
		Preload("SplitAccounts.Items").
		Preload("SplitAccounts.Account").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Preload("Items").
		Preload("Items.Product").
		Preload("Table").
		Preload("User").
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) AdvanceStatus(id string, from []string, to string) (int64, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *orderRepository) CountOpenOnTable(tableID, excludeOrderID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("table_id = ? AND id <> ? AND status NOT IN ?",
			tableID, excludeOrderID,
			[]string{string(models.OrderDelivered), string(models.OrderCancelled)}).
		Count(&count).Error
	return count, err
}
