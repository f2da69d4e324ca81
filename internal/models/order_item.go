package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItem struct {
	ID        string          `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   string          `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID string          `json:"product_id" gorm:"type:uuid;not null"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"` // snapshot at order time, never re-read
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"-"`
	Station   string          `json:"station" gorm:"default:'KITCHEN'"` // KITCHEN, BAR
	Status    string          `json:"status" gorm:"default:'PENDING'"`  // PENDING, PREPARING, READY
	Notes     string          `json:"notes" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDING"
	ItemPreparing ItemStatus = "PREPARING"
	ItemReady     ItemStatus = "READY"
)

func ValidItemStatus(s string) bool {
	switch ItemStatus(s) {
	case ItemPending, ItemPreparing, ItemReady:
		return true
	}
	return false
}

type Station string

const (
	StationKitchen Station = "KITCHEN"
	StationBar     Station = "BAR"
)

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// Subtotal is derived, never stored independently of price and quantity.
func (i *OrderItem) AfterFind(tx *gorm.DB) error {
	i.Subtotal = i.LineTotal()
	return nil
}

func (i *OrderItem) AfterCreate(tx *gorm.DB) error {
	i.Subtotal = i.LineTotal()
	return nil
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
