package handlers

import (
	"errors"
	"net/http"

	"github.com/merchpos/merchpos/internal/httpx"
	"github.com/merchpos/merchpos/internal/pos"
	"github.com/merchpos/merchpos/internal/store"
)

type SaleHandler struct {
	Svc *pos.Service
}

func NewSaleHandler(svc *pos.Service) *SaleHandler { return &SaleHandler{Svc: svc} }

// Checkout commits the cart as one sale. All-or-nothing: a line that would
// overdraw stock fails the whole checkout and the cart stays intact for
// correction.
func (h *SaleHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r)
	records, err := h.Svc.CompleteSale(r.Context(), owner)
	switch {
	case errors.Is(err, pos.ErrEmptyCart):
		httpx.JSONError(w, http.StatusBadRequest, "cart_empty", nil)
		return
	case errors.Is(err, store.ErrInsufficientStock):
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", nil)
		return
	case errors.Is(err, store.ErrNotFound):
		httpx.JSONError(w, http.StatusConflict, "item_no_longer_exists", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "sale_failed", nil)
		return
	}

	var total float64
	for _, rec := range records {
		total += rec.Total
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Sale completed!",
		"records": records,
		"total":   total,
	})
}
