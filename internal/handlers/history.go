package handlers

import (
	"net/http"

	"github.com/merchpos/merchpos/internal/httpx"
	"github.com/merchpos/merchpos/internal/pos"
)

type HistoryHandler struct {
	Svc *pos.Service
}

func NewHistoryHandler(svc *pos.Service) *HistoryHandler { return &HistoryHandler{Svc: svc} }

// List returns past sales, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.Svc.History(r.Context(), ownerFrom(r))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "history_fetch_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

// Export serves the full history as a CSV download, oldest first.
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	csv, err := h.Svc.ExportCSV(r.Context(), ownerFrom(r))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales-history.csv"`)
	_, _ = w.Write([]byte(csv))
}

// Clear irreversibly deletes the owner's history. Requires confirm=true.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	get, err := fields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if !confirmed(get) {
		httpx.JSONError(w, http.StatusBadRequest, "confirm_required", nil)
		return
	}
	if err := h.Svc.ClearHistory(r.Context(), ownerFrom(r)); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "history_clear_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Sales history cleared."})
}
