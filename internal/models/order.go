package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID            string          `json:"id" gorm:"type:uuid;primaryKey"`
	Type          string          `json:"type" gorm:"not null"`             // KITCHEN, BAR, TABLE, PERSONAL, TAKEAWAY
	Status        string          `json:"status" gorm:"default:'PENDING'"`  // PENDING, PREPARING, READY, DELIVERED, CANCELLED
	PaymentStatus string          `json:"payment_status" gorm:"default:'PENDING'"` // PENDING, PARTIAL, PAID, CANCELLED
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Tax           decimal.Decimal `json:"tax" gorm:"type:decimal(10,2);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Notes         string          `json:"notes" gorm:"type:text"`
	TableID       *string         `json:"table_id" gorm:"type:uuid;index"`
	Table         *Table          `json:"table,omitempty"`
	CustomerID    *string         `json:"customer_id" gorm:"type:uuid"`
	Customer      *Customer       `json:"customer,omitempty"`
	AccountID     *string         `json:"account_id" gorm:"type:uuid"`
	Account       *Account        `json:"account,omitempty"`
	CreatedBy     string          `json:"created_by" gorm:"type:uuid;not null"`
	User          *User           `json:"user,omitempty" gorm:"foreignKey:CreatedBy"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Payments      []Payment       `json:"payments,omitempty" gorm:"foreignKey:OrderID"`
	SplitAccounts []SplitAccount  `json:"split_accounts,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

type OrderType string

const (
	OrderKitchen  OrderType = "KITCHEN"
	OrderBar      OrderType = "BAR"
	OrderTable    OrderType = "TABLE"
	OrderPersonal OrderType = "PERSONAL"
	OrderTakeaway OrderType = "TAKEAWAY"
)

func ValidOrderType(t string) bool {
	switch OrderType(t) {
	case OrderKitchen, OrderBar, OrderTable, OrderPersonal, OrderTakeaway:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPending, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPartial   PaymentStatus = "PARTIAL"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
