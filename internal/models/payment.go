package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Payment struct {
	ID        string          `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   string          `json:"order_id" gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Method    string          `json:"method" gorm:"not null"`           // CASH, CARD, TRANSFER
	Status    string          `json:"status" gorm:"default:'PENDING'"` // PENDING, COMPLETED, FAILED
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCard     PaymentMethod = "CARD"
	MethodTransfer PaymentMethod = "TRANSFER"
)

func ValidPaymentMethod(m string) bool {
	switch PaymentMethod(m) {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}
	return false
}

type PaymentState string

const (
	PaymentStatePending   PaymentState = "PENDING"
	PaymentStateCompleted PaymentState = "COMPLETED"
	PaymentStateFailed    PaymentState = "FAILED"
)

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
