package handlers

import (
	"errors"
	"net/http"

	"github.com/merchpos/merchpos/internal/httpx"
	"github.com/merchpos/merchpos/internal/pos"
	"github.com/merchpos/merchpos/internal/store"
	"github.com/merchpos/merchpos/internal/validation"
)

type InventoryHandler struct {
	Svc *pos.Service
}

func NewInventoryHandler(svc *pos.Service) *InventoryHandler {
	return &InventoryHandler{Svc: svc}
}

// itemView is one inventory entry as the UI sees it: while an item is in
// Editing, the displayed quantity is the staged value.
type itemView struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Editing  bool    `json:"editing"`
}

func (h *InventoryHandler) view(owner uint) map[string]itemView {
	inv := h.Svc.Inventory(owner)
	out := make(map[string]itemView, len(inv))
	for name, it := range inv {
		v := itemView{Price: it.Price, Quantity: it.Quantity}
		if h.Svc.Editing(owner, name) {
			v.Editing = true
			if staged, ok := h.Svc.StagedQuantity(owner, name); ok {
				v.Quantity = staged
			}
		}
		out[name] = v
	}
	return out
}

// List refreshes the mapping from the store and returns it. A failed fetch
// still answers 200 with the stale mapping; the response flags it.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r)
	stale := h.Svc.Load(r.Context(), owner) != nil
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": h.view(owner),
		"stale": stale,
	})
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	get, err := fields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	name, priceRaw, qtyRaw := get("name"), get("price"), get("quantity")

	v := validation.Violations{}
	if !validation.Name(name) {
		v["name"] = "required"
	}
	validation.Required("price", priceRaw, v)
	validation.Required("quantity", qtyRaw, v)
	price, ok := validation.Price(priceRaw)
	if !ok {
		v["price"] = "invalid"
	}
	qty, ok := validation.Quantity(qtyRaw)
	if !ok {
		v["quantity"] = "invalid"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	owner := ownerFrom(r)
	if err := h.Svc.AddItem(r.Context(), owner, name, price, qty); err != nil {
		if errors.Is(err, store.ErrItemExists) {
			httpx.JSONError(w, http.StatusConflict, "item_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "item_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"items": h.view(owner)})
}

// UpdatePrice applies a price edit immediately. An input that fails the
// gate is dropped without an error, leaving state as it was.
func (h *InventoryHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	get, err := fields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	owner := ownerFrom(r)
	if err := h.Svc.UpdatePrice(r.Context(), owner, get("item"), get("price")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "price_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": h.view(owner)})
}

// StageQuantity records a quantity edit while the item is in Editing; it is
// not committed until the edit toggle locks again.
func (h *InventoryHandler) StageQuantity(w http.ResponseWriter, r *http.Request) {
	get, err := fields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	owner := ownerFrom(r)
	h.Svc.StageQuantity(owner, get("item"), get("quantity"))
	httpx.JSON(w, http.StatusOK, map[string]any{"items": h.view(owner)})
}

// ToggleEdit flips an item between Locked and Editing, committing the
// staged quantity on the way back to Locked.
func (h *InventoryHandler) ToggleEdit(w http.ResponseWriter, r *http.Request) {
	get, err := fields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	owner := ownerFrom(r)
	item := get("item")
	if err := h.Svc.ToggleEdit(r.Context(), owner, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "quantity_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"editing": h.Svc.Editing(owner, item),
		"items":   h.view(owner),
	})
}

// Delete removes an item everywhere: store row, mapping, cart line, edit
// tracking. It requires confirm=true.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	get, err := fields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if !confirmed(get) {
		httpx.JSONError(w, http.StatusBadRequest, "confirm_required", nil)
		return
	}
	owner := ownerFrom(r)
	item := get("item")
	if err := h.Svc.DeleteItem(r.Context(), owner, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "item_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": item, "items": h.view(owner)})
}
