package models

import "time"

// ModePaiement is the normalized payment method of a vente en caisse.
type ModePaiement string

const (
	ModeEspeces     ModePaiement = "cash"
	ModeCheque      ModePaiement = "cheque"
	ModeCredit      ModePaiement = "credit"
	ModeTicketResto ModePaiement = "meal_voucher"
	ModeCarte       ModePaiement = "card"
)

// Modes lists every payment method, in stable order for aggregation output.
func Modes() []ModePaiement {
	return []ModePaiement{ModeEspeces, ModeCheque, ModeCredit, ModeTicketResto, ModeCarte}
}

// VenteCaisse is the cash-register record written once a commande is
// delivered. Append-only: rows are never updated or deleted, and the unique
// index on CommandeID is what guarantees at most one vente per commande even
// under concurrent delivery triggers.
type VenteCaisse struct {
	ID           uint         `gorm:"primaryKey"`
	CommandeID   uint         `gorm:"not null;uniqueIndex"`
	UserID       uint         `gorm:"not null;index"` // responsable ayant encaissé
	User         User         `gorm:"foreignKey:UserID"`
	MontantBrut  float64      `gorm:"not null"`
	Remise       float64      `gorm:"not null;default:0"`
	MontantNet   float64      `gorm:"not null"`
	ModePaiement ModePaiement `gorm:"size:20;not null"`
	Date         time.Time    `gorm:"not null;index"`
	Description  string
	CreatedAt    time.Time
}

// TableName pins the table to the name the SQL migrations create; gorm's
// default pluralization would produce "vente_caisses".
func (VenteCaisse) TableName() string { return "ventes_caisse" }
