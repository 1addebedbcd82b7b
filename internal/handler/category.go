package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pillbox/internal/cabinet"
)

type CategoryHandler struct {
	cabinet *cabinet.Service
	logger  *slog.Logger
}

func NewCategoryHandler(svc *cabinet.Service, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{cabinet: svc, logger: logger}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.cabinet.Categories(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", categories)
}

func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	category, err := h.cabinet.AddCategory(r.Context(), firstParam(params, "category", "name"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("Category %q added", category.Name), category)
}

func (h *CategoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	name := firstParam(params, "category", "name")
	if err := h.cabinet.RemoveCategory(r.Context(), name); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Category %q removed", name), nil)
}
