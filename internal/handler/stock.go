package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pillbox/internal/cabinet"
)

type StockHandler struct {
	cabinet *cabinet.Service
	logger  *slog.Logger
}

func NewStockHandler(svc *cabinet.Service, logger *slog.Logger) *StockHandler {
	return &StockHandler{cabinet: svc, logger: logger}
}

func (h *StockHandler) Levels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.cabinet.StockLevels(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", levels)
}

func (h *StockHandler) AddMedicineWithStock(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	quantity, err := intParam(params, "stock")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	threshold, err := intParam(params, "threshold")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entry, err := h.cabinet.AddMedicineWithStock(r.Context(), medicineInput(params), quantity, threshold)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated,
		fmt.Sprintf("Medicine %q added with %d in stock", entry.Medicine, entry.Quantity), entry)
}

func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	quantity, err := intParam(params, "quantity")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entry, err := h.cabinet.UpdateStock(r.Context(), firstParam(params, "name", "medicine"), quantity)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Stock for %q set to %d", entry.Medicine, entry.Quantity), entry)
}

func (h *StockHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	amount, err := intParam(params, "quantity")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entry, err := h.cabinet.DecreaseStock(r.Context(), firstParam(params, "name", "medicine"), amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Stock for %q decreased to %d", entry.Medicine, entry.Quantity), entry)
}

func (h *StockHandler) LowStockAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.cabinet.LowStockAlerts(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	msg := "All medicines are sufficiently stocked"
	if len(alerts) > 0 {
		msg = fmt.Sprintf("%d medicine(s) low on stock", len(alerts))
	}
	writeSuccess(w, http.StatusOK, msg, alerts)
}

func (h *StockHandler) Check(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	check, err := h.cabinet.CheckStock(r.Context(), firstParam(params, "name", "medicine"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	msg := "Stock Available"
	if !check.Available {
		msg = "Out of Stock"
	}
	writeSuccess(w, http.StatusOK, msg, check)
}
