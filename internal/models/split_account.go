package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SplitAccount is a partial, independently payable slice of an order's total.
// Its items are a parallel snapshot, not references into the order's items.
type SplitAccount struct {
	ID        string          `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   string          `json:"order_id" gorm:"type:uuid;not null;index"`
	AccountID string          `json:"account_id" gorm:"type:uuid;not null"`
	Account   *Account        `json:"account,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Status    string          `json:"status" gorm:"default:'PENDING'"` // PENDING, PAID
	Items     []SplitItem     `json:"items" gorm:"foreignKey:SplitAccountID"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type SplitItem struct {
	ID             string          `json:"id" gorm:"type:uuid;primaryKey"`
	SplitAccountID string          `json:"split_account_id" gorm:"type:uuid;not null;index"`
	ProductID      string          `json:"product_id" gorm:"type:uuid;not null"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SplitStatus string

const (
	SplitPending SplitStatus = "PENDING"
	SplitPaid    SplitStatus = "PAID"
)

func (s *SplitAccount) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (s *SplitItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
