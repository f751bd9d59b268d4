package handlers

import (
	"net/http"

	"github.com/merchpos/merchpos/internal/httpx"
	"github.com/merchpos/merchpos/internal/pos"
)

type CartHandler struct {
	Svc *pos.Service
}

func NewCartHandler(svc *pos.Service) *CartHandler { return &CartHandler{Svc: svc} }

func (h *CartHandler) cartView(owner uint) map[string]any {
	return map[string]any{
		"lines": h.Svc.CartLines(owner),
		"total": h.Svc.CartTotal(owner),
	}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.cartView(ownerFrom(r)))
}

// Set records one cart line. Bad quantities and unknown items are dropped
// silently, so the response always reflects the (possibly unchanged) cart.
func (h *CartHandler) Set(w http.ResponseWriter, r *http.Request) {
	get, err := fields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	owner := ownerFrom(r)
	h.Svc.SetCartLine(owner, get("item"), get("qty"))
	httpx.JSON(w, http.StatusOK, h.cartView(owner))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r)
	h.Svc.ClearCart(owner)
	httpx.JSON(w, http.StatusOK, h.cartView(owner))
}
