package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/negoce-app/backoffice/internal/models"
)

// TransitionPolicy decides how the status machine treats transitions.
// The historical behavior is permissive (any status can follow any other,
// including leaving delivered); strict only allows the forward chain plus
// cancellation/return from non-terminal states.
type TransitionPolicy string

const (
	PolicyPermissive TransitionPolicy = "permissive"
	PolicyStrict     TransitionPolicy = "strict"
)

// forward chain used by the strict policy
var nextStatus = map[models.OrderStatus]models.OrderStatus{
	models.StatusPending:    models.StatusConfirmed,
	models.StatusConfirmed:  models.StatusProcessing,
	models.StatusProcessing: models.StatusReady,
	models.StatusReady:      models.StatusShipped,
	models.StatusShipped:    models.StatusDelivered,
}

// OrderService owns commandes and their status lifecycle. Stock reservation
// happens at creation; the vente en caisse is written by the Reconciler on
// the first arrival at delivered.
type OrderService struct {
	DB         *gorm.DB
	Policy     TransitionPolicy
	Reconciler *Reconciler
}

func NewOrderService(db *gorm.DB, policy TransitionPolicy) *OrderService {
	if policy != PolicyStrict {
		policy = PolicyPermissive
	}
	return &OrderService{DB: db, Policy: policy, Reconciler: NewReconciler(db)}
}

type CreateOrderItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderInput struct {
	ClientID      uint              `json:"client_id"`
	ResponsableID uint              `json:"responsable_id"`
	Items         []CreateOrderItem `json:"items"`
}

// CreateOrder creates a commande in pending and reserves stock for every
// item in one transaction: either the commande exists and all stock is
// decremented, or nothing happened. Decrements are conditional updates
// (stock = stock - qty where stock >= qty) so concurrent creations cannot
// oversell a product.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Commande, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("items: %w", ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.ProductID == 0 || it.Quantity <= 0 {
			return nil, fmt.Errorf("item product/quantity: %w", ErrInvalidInput)
		}
	}
	db := s.DB.WithContext(ctx)

	var client models.Client
	if err := db.First(&client, in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", in.ClientID, ErrNotFound)
		}
		return nil, err
	}
	var responsable models.User
	if err := db.First(&responsable, in.ResponsableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("responsable %d: %w", in.ResponsableID, ErrNotFound)
		}
		return nil, err
	}

	productIDs := make([]uint, 0, len(in.Items))
	for _, it := range in.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	var products []models.Product
	if err := db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	prodByID := map[uint]models.Product{}
	for _, p := range products {
		prodByID[p.ID] = p
	}
	// Check everything before mutating anything, so the caller gets the
	// precise failing product and remaining quantity.
	for _, it := range in.Items {
		p, ok := prodByID[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("produit %d: %w", it.ProductID, ErrNotFound)
		}
		if p.Stock < it.Quantity {
			return nil, &InsufficientStockError{ProductID: p.ID, Requested: it.Quantity, Available: p.Stock}
		}
	}

	cmd := models.Commande{
		ClientID:       client.ID,
		ClientNom:      client.Nom,
		ResponsableID:  responsable.ID,
		ResponsableNom: responsable.DisplayName(),
		Statut:         models.StatusPending,
	}
	for _, it := range in.Items {
		p := prodByID[it.ProductID]
		cmd.Items = append(cmd.Items, models.CommandeItem{
			ProductID:    p.ID,
			Quantity:     it.Quantity,
			PrixUnitaire: p.UnitPrice,
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cmd).Error; err != nil {
			return err
		}
		for _, it := range in.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// A concurrent commande drained the stock after the precheck.
				var p models.Product
				if ferr := tx.First(&p, it.ProductID).Error; ferr != nil {
					return ferr
				}
				return &InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: p.Stock}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.Create(&models.AuditLog{
		UserID:     responsable.ID,
		EntityType: "Commande",
		EntityID:   cmd.ID,
		Action:     "create",
		NewValue:   string(models.StatusPending),
	})
	return &cmd, nil
}

// StatusUpdateResult is what a status update hands back to the HTTP layer.
// Warning is the side channel for reconciliation problems: the status write
// itself already succeeded when it is set.
type StatusUpdateResult struct {
	Commande *models.Commande    `json:"commande"`
	Vente    *models.VenteCaisse `json:"vente,omitempty"`
	Warning  string              `json:"warning,omitempty"`
}

// UpdateOrderStatus writes the new status, then fires reconciliation when
// the commande first arrives at delivered. A reconciliation failure never
// rolls back or fails the status write; it comes back as Warning only.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, statut models.OrderStatus, pay *PaymentInfo) (*StatusUpdateResult, error) {
	if !statut.Valid() {
		return nil, fmt.Errorf("statut %q: %w", statut, ErrInvalidStatus)
	}
	db := s.DB.WithContext(ctx)

	var cmd models.Commande
	if err := db.Preload("Items.Product").First(&cmd, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("commande %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	prev := cmd.Statut
	if s.Policy == PolicyStrict && !strictAllowed(prev, statut) {
		return nil, fmt.Errorf("transition %s -> %s: %w", prev, statut, ErrInvalidStatus)
	}

	// Deliberately outside any shared transaction with the vente write:
	// the status change must stand even when reconciliation fails.
	if err := db.Model(&cmd).Update("statut", statut).Error; err != nil {
		return nil, err
	}
	cmd.Statut = statut
	db.Create(&models.AuditLog{
		EntityType: "Commande",
		EntityID:   cmd.ID,
		Action:     "status_change",
		Field:      "statut",
		OldValue:   string(prev),
		NewValue:   string(statut),
	})

	res := &StatusUpdateResult{Commande: &cmd}
	if statut == models.StatusDelivered && prev != models.StatusDelivered {
		vente, err := s.Reconciler.Reconcile(ctx, &cmd, pay)
		if err != nil {
			log.Printf("[orders] WARN: reconciliation commande=%d: %v", cmd.ID, err)
			if errors.Is(err, ErrResponsableNotFound) {
				res.Warning = "responsable_not_found"
			} else {
				res.Warning = "reconciliation_failed"
			}
		} else {
			res.Vente = vente
		}
	}
	return res, nil
}

func strictAllowed(from, to models.OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == models.StatusCancelled || to == models.StatusReturned {
		return true
	}
	return nextStatus[from] == to
}

// Reconcile is the operator entry point to re-run a settlement for a
// delivered commande whose vente is missing (transient lookup failures
// leave the commande delivered with no vente en caisse). Idempotent.
func (s *OrderService) Reconcile(ctx context.Context, orderID uint, pay *PaymentInfo) (*models.VenteCaisse, error) {
	db := s.DB.WithContext(ctx)
	var cmd models.Commande
	if err := db.Preload("Items.Product").First(&cmd, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("commande %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	if cmd.Statut != models.StatusDelivered {
		// A vente may still exist if the commande left delivered afterwards.
		var existing models.VenteCaisse
		if err := db.Where("commande_id = ?", cmd.ID).First(&existing).Error; err == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("commande %d not delivered: %w", orderID, ErrInvalidStatus)
	}
	return s.Reconciler.Reconcile(ctx, &cmd, pay)
}

// GetOrder loads a commande with items, products and client.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Commande, error) {
	var cmd models.Commande
	err := s.DB.WithContext(ctx).Preload("Items.Product").Preload("Client").First(&cmd, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("commande %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	return &cmd, nil
}

// ListOrdersByClient returns a client's commandes, most recent first.
func (s *OrderService) ListOrdersByClient(ctx context.Context, clientID uint) ([]models.Commande, error) {
	var cmds []models.Commande
	err := s.DB.WithContext(ctx).Preload("Items.Product").
		Where("client_id = ?", clientID).Order("id desc").Find(&cmds).Error
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

// DeleteOrder removes a commande and its items. Refused while a vente en
// caisse references the commande: the caisse ledger is append-only and must
// keep resolving its order reference.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	db := s.DB.WithContext(ctx)
	var cmd models.Commande
	if err := db.First(&cmd, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("commande %d: %w", orderID, ErrNotFound)
		}
		return err
	}
	var refs int64
	if err := db.Model(&models.VenteCaisse{}).Where("commande_id = ?", orderID).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrOrderReferenced
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("commande_id = ?", orderID).Delete(&models.CommandeItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cmd).Error
	})
}

// ComputeOrderTotal sums quantité × prix catalogue courant over the items.
// A catalog price change moves the total; only lines whose product was
// retired from the catalog keep their creation-time price.
func (s *OrderService) ComputeOrderTotal(ctx context.Context, orderID uint) (float64, error) {
	var items []models.CommandeItem
	err := s.DB.WithContext(ctx).Preload("Product").
		Where("commande_id = ?", orderID).Find(&items).Error
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		// distinguish empty commande from missing commande
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Commande{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, fmt.Errorf("commande %d: %w", orderID, ErrNotFound)
		}
	}
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * itemUnitPrice(it)
	}
	return total, nil
}
