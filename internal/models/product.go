package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"unique;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type Product struct {
	ID         string          `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string          `json:"name" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock      int             `json:"stock" gorm:"default:0"`
	Active     bool            `json:"active" gorm:"default:true"`
	CategoryID string          `json:"category_id" gorm:"type:uuid;not null"`
	Category   *Category       `json:"category,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
