package services

import (
	"strings"

	"github.com/negoce-app/backoffice/internal/models"
)

// PaymentInfo carries the optional payment payload of a status update.
// Pointer fields distinguish "absent" from an explicit zero: the caisse
// trusts caller-supplied amounts and only falls back to the item sum when a
// value is omitted.
type PaymentInfo struct {
	Mode   string   `json:"mode"`
	Brut   *float64 `json:"brut"`
	Remise *float64 `json:"remise"`
	Net    *float64 `json:"net"`
}

// itemUnitPrice returns the current catalog price of an item's product. A
// product retired from the catalog (soft delete) no longer preloads; its line
// then falls back to the PrixUnitaire snapshot captured at creation.
func itemUnitPrice(it models.CommandeItem) float64 {
	if it.Product.ID == 0 {
		return it.PrixUnitaire
	}
	return it.Product.UnitPrice
}

// ResolveAmounts computes the settlement amounts for a commande.
// Fallbacks: brut = Σ quantité × prix catalogue courant, remise = 0,
// net = brut − remise. Items must carry preloaded products.
func ResolveAmounts(items []models.CommandeItem, pay *PaymentInfo) (brut, remise, net float64) {
	if pay != nil && pay.Brut != nil {
		brut = *pay.Brut
	} else {
		for _, it := range items {
			brut += float64(it.Quantity) * itemUnitPrice(it)
		}
	}
	if pay != nil && pay.Remise != nil {
		remise = *pay.Remise
	}
	if pay != nil && pay.Net != nil {
		net = *pay.Net
	} else {
		net = brut - remise
	}
	return brut, remise, net
}

// modeSynonyms maps lowercase caller-supplied tags (console UI sends French
// labels, the mobile app English ones) to the five normalized methods.
var modeSynonyms = map[string]models.ModePaiement{
	"cash":              models.ModeEspeces,
	"espèces":           models.ModeEspeces,
	"especes":           models.ModeEspeces,
	"cheque":            models.ModeCheque,
	"chèque":            models.ModeCheque,
	"check":             models.ModeCheque,
	"credit":            models.ModeCredit,
	"crédit":            models.ModeCredit,
	"meal_voucher":      models.ModeTicketResto,
	"ticket":            models.ModeTicketResto,
	"ticket_restaurant": models.ModeTicketResto,
	"tr":                models.ModeTicketResto,
	"card":              models.ModeCarte,
	"carte":             models.ModeCarte,
	"cb":                models.ModeCarte,
}

// NormalizeModePaiement maps a free-form tag to a payment method,
// case-insensitively. Unknown or empty tags default to cash, matching the
// register's behavior for walk-in sales.
func NormalizeModePaiement(raw string) models.ModePaiement {
	if m, ok := modeSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return m
	}
	return models.ModeEspeces
}
