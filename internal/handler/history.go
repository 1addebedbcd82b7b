package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pillbox/internal/cabinet"
)

type HistoryHandler struct {
	cabinet *cabinet.Service
	logger  *slog.Logger
}

func NewHistoryHandler(svc *cabinet.Service, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{cabinet: svc, logger: logger}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.cabinet.History(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", entries)
}

func (h *HistoryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	undone, err := h.cabinet.Undo(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Undid: "+undone.Details, undone)
}

func (h *HistoryHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.cabinet.Status(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", status)
}
