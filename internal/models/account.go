package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a bill container attached to a table, shared by the orders
// placed against it and by split billing.
type Account struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	Type      string     `json:"type" gorm:"default:'SHARED'"`   // INDIVIDUAL, SHARED
	Status    string     `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, CLOSED
	TableID   *string    `json:"table_id" gorm:"type:uuid;index"`
	OpenedAt  time.Time  `json:"opened_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type AccountType string

const (
	AccountIndividual AccountType = "INDIVIDUAL"
	AccountShared     AccountType = "SHARED"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
)

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
