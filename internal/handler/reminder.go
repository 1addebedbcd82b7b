package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pillbox/internal/cabinet"
)

type ReminderHandler struct {
	cabinet *cabinet.Service
	logger  *slog.Logger
}

func NewReminderHandler(svc *cabinet.Service, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{cabinet: svc, logger: logger}
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.cabinet.Reminders(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", reminders)
}

func (h *ReminderHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	rem, err := h.cabinet.ScheduleReminder(r.Context(), firstParam(params, "medicine", "name"), params.Get("time"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("Reminder scheduled for %q at %s", rem.Medicine, rem.Time), rem)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	medicine := firstParam(params, "medicine", "name")
	removed, err := h.cabinet.DeleteReminder(r.Context(), medicine, params.Get("time"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	msg := fmt.Sprintf("Reminder for %q deleted", medicine)
	if !removed {
		msg = fmt.Sprintf("No reminder for %q at that time", medicine)
	}
	writeSuccess(w, http.StatusOK, msg, map[string]bool{"removed": removed})
}

func (h *ReminderHandler) Next(w http.ResponseWriter, r *http.Request) {
	next, err := h.cabinet.NextReminder(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if next == nil {
		writeSuccess(w, http.StatusOK, "No reminders scheduled", nil)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Next: %s at %s", next.Medicine, next.Time), next)
}

func (h *ReminderHandler) Queue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.cabinet.ViewQueue(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", queue)
}

func (h *ReminderHandler) MarkTaken(w http.ResponseWriter, r *http.Request) {
	taken, err := h.cabinet.MarkTaken(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Marked %s at %s as taken", taken.Medicine, taken.Time), taken)
}

func (h *ReminderHandler) Refill(w http.ResponseWriter, r *http.Request) {
	n, err := h.cabinet.RefillQueue(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Queue refilled with %d dose(s)", n), map[string]int{"queued": n})
}
