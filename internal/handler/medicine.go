package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dukerupert/pillbox/internal/cabinet"
	"github.com/dukerupert/pillbox/internal/model"
)

type MedicineHandler struct {
	cabinet *cabinet.Service
	logger  *slog.Logger
}

func NewMedicineHandler(svc *cabinet.Service, logger *slog.Logger) *MedicineHandler {
	return &MedicineHandler{cabinet: svc, logger: logger}
}

func medicineInput(params url.Values) cabinet.MedicineInput {
	return cabinet.MedicineInput{
		Name:     params.Get("name"),
		Dose:     params.Get("dose"),
		Timings:  params.Get("timings"),
		Category: params.Get("category"),
	}
}

func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	medicines, err := h.cabinet.Medicines(r.Context(), model.MedicineFilter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", medicines)
}

func (h *MedicineHandler) Add(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	m, err := h.cabinet.AddMedicine(r.Context(), medicineInput(params))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("Medicine %q added", m.Name), m)
}

func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	name := params.Get("name")
	if err := h.cabinet.DeleteMedicine(r.Context(), name); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Medicine %q deleted", name), nil)
}

func (h *MedicineHandler) Search(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	m, err := h.cabinet.SearchMedicine(r.Context(), params.Get("name"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", m)
}

func (h *MedicineHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	medicines, err := h.cabinet.MedicinesByCategory(r.Context(), params.Get("category"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", medicines)
}
