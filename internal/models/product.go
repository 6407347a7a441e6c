package models

import (
	"time"

	"gorm.io/gorm"
)

// Product domain model. Stock is the live inventory counter: order creation
// decrements it with a conditional update, never a read-then-write.
type Product struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"size:40;uniqueIndex"` // identifiant lisible (référence fournisseur)
	Name      string         `gorm:"not null"`
	UnitPrice float64        `gorm:"not null"`
	Stock     int            `gorm:"not null;default:0"`
	Currency  string         `gorm:"not null;default:'EUR'"` // devise du produit
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
