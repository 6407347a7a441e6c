package models

import "time"

// Client entity
type Client struct {
	ID            uint   `gorm:"primaryKey"`
	Nom           string `gorm:"not null;index"` // Raison sociale ou nom
	NomCommercial string `gorm:"index"`
	Contact       string // Nom du contact principal
	Telephone     string
	Email         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
