package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/negoce-app/backoffice/internal/httpx"
	"github.com/negoce-app/backoffice/internal/models"
	"github.com/negoce-app/backoffice/internal/services"
)

// CommandeHandler exposes the order lifecycle to the admin console.
type CommandeHandler struct {
	DB  *gorm.DB
	Svc *services.OrderService
}

func NewCommandeHandler(db *gorm.DB, svc *services.OrderService) *CommandeHandler {
	return &CommandeHandler{DB: db, Svc: svc}
}

func queryID(r *http.Request, name string) (uint, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var stock *services.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", map[string]any{
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		})
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, services.ErrOrderReferenced):
		httpx.JSONError(w, http.StatusConflict, "commande_referenced", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// Create: POST /commandes
func (h *CommandeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	cmd, err := h.Svc.CreateOrder(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cmd)
}

// Get: GET /commandes?id=... or ?client_id=... (list)
func (h *CommandeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if id, ok := queryID(r, "id"); ok {
		cmd, err := h.Svc.GetOrder(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, cmd)
		return
	}
	if clientID, ok := queryID(r, "client_id"); ok {
		cmds, err := h.Svc.ListOrdersByClient(r.Context(), clientID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": cmds, "total": len(cmds)})
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
}

type statusUpdateReq struct {
	Statut  models.OrderStatus    `json:"statut"`
	Payment *services.PaymentInfo `json:"payment"`
}

// UpdateStatus: POST /commandes/status?id=...
// Always 200 once the status write landed; reconciliation trouble shows up
// in the body as "warning", never as an error status.
func (h *CommandeHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var req statusUpdateReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	res, err := h.Svc.UpdateOrderStatus(r.Context(), id, req.Statut, req.Payment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Reconcile: POST /commandes/reconcile?id=...
// Operator retry for delivered commandes whose vente is missing.
func (h *CommandeHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var pay *services.PaymentInfo
	if r.ContentLength > 0 {
		pay = &services.PaymentInfo{}
		if err := httpx.Decode(r, pay); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	}
	vente, err := h.Svc.Reconcile(r.Context(), id, pay)
	if err != nil {
		if errors.Is(err, services.ErrResponsableNotFound) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "responsable_not_found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vente)
}

// Delete: POST /commandes/delete?id=...
func (h *CommandeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	if err := h.Svc.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Total: GET /commandes/total?id=...
func (h *CommandeHandler) Total(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	total, err := h.Svc.ComputeOrderTotal(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "total": total})
}
