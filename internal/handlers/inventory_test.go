package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/merchpos/merchpos/internal/pos"
	"github.com/merchpos/merchpos/internal/store"
)

func newTestService(t *testing.T) *pos.Service {
	t.Helper()
	return pos.New(store.NewMemoryStore())
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func postForm(t *testing.T, h http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeItems(t *testing.T, w *httptest.ResponseRecorder) map[string]itemView {
	t.Helper()
	var payload struct {
		Items map[string]itemView `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return payload.Items
}

func TestInventoryCreateAndList(t *testing.T) {
	svc := newTestService(t)
	h := NewInventoryHandler(svc)

	// JSON path; price and quantity arrive as raw text from the UI.
	w := postJSON(t, h.Create, "/inventory", `{"name":"Mug","price":"10","quantity":"5"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}

	// Form path, JSON numbers also accepted.
	w = postForm(t, h.Create, "/inventory", url.Values{"name": {"Tote"}, "price": {"12.5"}, "quantity": {"3"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	items := decodeItems(t, rec)
	if len(items) != 2 {
		t.Fatalf("expected 2 items got %d", len(items))
	}
	if items["Tote"].Price != 12.5 || items["Tote"].Quantity != 3 {
		t.Fatalf("unexpected Tote view: %+v", items["Tote"])
	}
}

func TestInventoryCreateValidation(t *testing.T) {
	svc := newTestService(t)
	h := NewInventoryHandler(svc)

	// Missing fields are reported per field.
	w := postJSON(t, h.Create, "/inventory", `{"name":"Mug"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") {
		t.Fatalf("expected validation_failed body: %s", w.Body.String())
	}

	// Non-numeric quantity fails the gate.
	w = postJSON(t, h.Create, "/inventory", `{"name":"Mug","price":"10","quantity":"12a"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	// Duplicate name conflicts.
	postJSON(t, h.Create, "/inventory", `{"name":"Mug","price":"10","quantity":"5"}`)
	w = postJSON(t, h.Create, "/inventory", `{"name":"Mug","price":"1","quantity":"1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}
}

func TestInventoryPriceAndEditToggle(t *testing.T) {
	svc := newTestService(t)
	h := NewInventoryHandler(svc)
	postJSON(t, h.Create, "/inventory", `{"name":"Mug","price":"10","quantity":"5"}`)

	// Price edit applies immediately.
	w := postJSON(t, h.UpdatePrice, "/inventory/price", `{"item":"Mug","price":"12.5"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if items := decodeItems(t, w); items["Mug"].Price != 12.5 {
		t.Fatalf("price not applied: %+v", items["Mug"])
	}

	// Invalid price is silently dropped, state unchanged.
	w = postJSON(t, h.UpdatePrice, "/inventory/price", `{"item":"Mug","price":"x"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if items := decodeItems(t, w); items["Mug"].Price != 12.5 {
		t.Fatalf("rejected edit leaked: %+v", items["Mug"])
	}

	// Unlock, stage, lock: displayed quantity follows the staged value
	// while editing, the committed one after locking.
	w = postJSON(t, h.ToggleEdit, "/inventory/edit", `{"item":"Mug"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200 got %d", w.Code)
	}
	w = postJSON(t, h.StageQuantity, "/inventory/quantity", `{"item":"Mug","quantity":"8"}`)
	if items := decodeItems(t, w); !items["Mug"].Editing || items["Mug"].Quantity != 8 {
		t.Fatalf("staged view wrong: %+v", items["Mug"])
	}
	w = postJSON(t, h.ToggleEdit, "/inventory/edit", `{"item":"Mug"}`)
	if items := decodeItems(t, w); items["Mug"].Editing || items["Mug"].Quantity != 8 {
		t.Fatalf("committed view wrong: %+v", items["Mug"])
	}

	w = postJSON(t, h.UpdatePrice, "/inventory/price", `{"item":"Ghost","price":"1"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestInventoryDeleteRequiresConfirm(t *testing.T) {
	svc := newTestService(t)
	h := NewInventoryHandler(svc)
	postJSON(t, h.Create, "/inventory", `{"name":"Mug","price":"10","quantity":"5"}`)

	w := postJSON(t, h.Delete, "/inventory/delete", `{"item":"Mug"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm got %d", w.Code)
	}

	w = postJSON(t, h.Delete, "/inventory/delete", `{"item":"Mug","confirm":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if items := decodeItems(t, w); len(items) != 0 {
		t.Fatalf("item not removed: %+v", items)
	}

	w = postJSON(t, h.Delete, "/inventory/delete", `{"item":"Mug","confirm":"true"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
