package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Zone struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"unique;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type Table struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey"`
	Number     int            `json:"number" gorm:"not null;uniqueIndex:idx_tables_zone_number"`
	Capacity   int            `json:"capacity" gorm:"default:4"`
	Status     string         `json:"status" gorm:"default:'LIBRE'"` // LIBRE, OCUPADA, EN_PEDIDO, EN_CUENTA
	ZoneID     string         `json:"zone_id" gorm:"type:uuid;uniqueIndex:idx_tables_zone_number"`
	Zone       *Zone          `json:"zone,omitempty"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Active     bool           `json:"active" gorm:"default:true"`
	OccupiedAt *time.Time     `json:"occupied_at"`
	WaiterID   *string        `json:"waiter_id" gorm:"type:uuid"`
	Waiter     *User          `json:"waiter,omitempty" gorm:"foreignKey:WaiterID"`
	Accounts   []Account      `json:"accounts,omitempty" gorm:"foreignKey:TableID"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type TableStatus string

const (
	TableFree     TableStatus = "LIBRE"
	TableOccupied TableStatus = "OCUPADA"
	TableOrdering TableStatus = "EN_PEDIDO"
	TableBilling  TableStatus = "EN_CUENTA"
)

func ValidTableStatus(s string) bool {
	switch TableStatus(s) {
	case TableFree, TableOccupied, TableOrdering, TableBilling:
		return true
	}
	return false
}

// ActiveAccount returns the table's open account, if any. A table carries at
// most one ACTIVE account at a time.
func (t *Table) ActiveAccount() *Account {
	for i := range t.Accounts {
		if t.Accounts[i].Status == string(AccountActive) {
			return &t.Accounts[i]
		}
	}
	return nil
}

func (z *Zone) BeforeCreate(tx *gorm.DB) error {
	if z.ID == "" {
		z.ID = uuid.New().String()
	}
	return nil
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
