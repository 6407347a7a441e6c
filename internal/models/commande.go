package models

import "time"

// OrderStatus is the lifecycle of a commande. The forward chain is
// pending → confirmed → processing → ready → shipped → delivered, with
// cancelled and returned reachable from any non-terminal state.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusReady      OrderStatus = "ready"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusReady,
		StatusShipped, StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// Terminal reports whether s allows no further automatic side effects.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusReturned
}

// Commande models
type Commande struct {
	ID       uint   `gorm:"primaryKey"`
	ClientID uint   `gorm:"not null;index"`
	Client   Client `gorm:"foreignKey:ClientID"`
	// Identité du responsable figée à la création. The id is the stable key
	// used at settlement time; the name is kept for display and as a legacy
	// fallback when older rows carry no id.
	ResponsableID  uint           `gorm:"index"`
	ResponsableNom string         `gorm:"not null"`
	ClientNom      string         `gorm:"not null"` // snapshot affichage
	Statut         OrderStatus    `gorm:"size:20;not null;index"`
	Items          []CommandeItem `gorm:"foreignKey:CommandeID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CommandeItem struct {
	ID         uint    `gorm:"primaryKey"`
	CommandeID uint    `gorm:"not null;index"`
	ProductID  uint    `gorm:"not null"`
	Product    Product `gorm:"foreignKey:ProductID"`
	Quantity   int     `gorm:"not null"`
	// Prix constaté à la création, conservé pour affichage uniquement.
	// Totals and settlement fallbacks read the current catalog price.
	PrixUnitaire float64
}
