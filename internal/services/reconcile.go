package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/negoce-app/backoffice/internal/models"
)

// Reconciler turns a delivered commande into its vente en caisse. The write
// is idempotent: the unique index on ventes_caisse.commande_id is the source
// of truth, and a duplicate-key conflict on insert is treated as success.
type Reconciler struct {
	DB *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler { return &Reconciler{DB: db} }

// Reconcile computes and records the settlement for cmd. Safe to call any
// number of times for the same commande; every call after the first returns
// the existing vente untouched. Items must be preloaded with their products.
func (r *Reconciler) Reconcile(ctx context.Context, cmd *models.Commande, pay *PaymentInfo) (*models.VenteCaisse, error) {
	db := r.DB.WithContext(ctx)

	var existing models.VenteCaisse
	err := db.Where("commande_id = ?", cmd.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	brut, remise, net := ResolveAmounts(cmd.Items, pay)
	mode := models.ModeEspeces
	if pay != nil {
		mode = NormalizeModePaiement(pay.Mode)
	}

	user, err := r.resolveResponsable(db, cmd)
	if err != nil {
		return nil, err
	}

	vente := models.VenteCaisse{
		CommandeID:   cmd.ID,
		UserID:       user.ID,
		MontantBrut:  brut,
		Remise:       remise,
		MontantNet:   net,
		ModePaiement: mode,
		Date:         time.Now(),
		Description:  fmt.Sprintf("Vente commande #%d - %s", cmd.ID, cmd.ClientNom),
	}
	if err := db.Create(&vente).Error; err != nil {
		// Lost the race against a concurrent delivery trigger: the row that
		// won is the settlement, return it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var won models.VenteCaisse
			if ferr := db.Where("commande_id = ?", cmd.ID).First(&won).Error; ferr != nil {
				return nil, ferr
			}
			return &won, nil
		}
		return nil, err
	}

	db.Create(&models.AuditLog{
		UserID:     user.ID,
		EntityType: "VenteCaisse",
		EntityID:   vente.ID,
		Action:     "reconcile",
		NewValue:   fmt.Sprintf("commande=%d net=%.2f mode=%s", cmd.ID, net, mode),
	})
	return &vente, nil
}

// resolveResponsable finds the settling user. Orders created since the id
// column exists carry ResponsableID; older rows fall back to matching the
// captured display name against the annuaire.
func (r *Reconciler) resolveResponsable(db *gorm.DB, cmd *models.Commande) (*models.User, error) {
	var user models.User
	if cmd.ResponsableID != 0 {
		if err := db.First(&user, cmd.ResponsableID).Error; err == nil {
			return &user, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	name := strings.TrimSpace(cmd.ResponsableNom)
	if name == "" {
		return nil, ErrResponsableNotFound
	}
	err := db.Where("nom = ? OR (prenom || ' ' || nom) = ? OR email = ?", name, name, name).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponsableNotFound
		}
		return nil, err
	}
	return &user, nil
}
