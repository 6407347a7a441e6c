package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing clients, responsables, produits et commandes.
	ErrNotFound = errors.New("not_found")
	// ErrResponsableNotFound means the settling user could not be resolved;
	// the vente is not written but the status change stands.
	ErrResponsableNotFound = errors.New("responsable_not_found")
	// ErrInvalidStatus rejects unknown statuses, and known ones when the
	// strict transition policy is active.
	ErrInvalidStatus = errors.New("invalid_status")
	// ErrInvalidInput flags malformed creation payloads (empty items, zero
	// quantities) before any lookup happens.
	ErrInvalidInput = errors.New("invalid_input")
	// ErrOrderReferenced refuses deleting a commande with a vente en caisse.
	ErrOrderReferenced = errors.New("commande_referenced_by_vente")
)

// InsufficientStockError reports which product ran short and how much is
// left, so the console can show the remaining quantity.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient_stock: product %d requested %d available %d",
		e.ProductID, e.Requested, e.Available)
}
