// Package notify delivers dose and stock notifications over SMS, e-mail or
// the log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/pillbox/internal/model"
)

type Message struct {
	Kind    model.NotificationKind
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// DoseDue builds the message for a dose that has come due.
func DoseDue(e model.QueueEntry) Message {
	return Message{
		Kind:    model.NotifyDoseDue,
		Subject: fmt.Sprintf("Time to take %s", e.Medicine),
		Body:    fmt.Sprintf("Reminder: take %s (scheduled %s).", e.Medicine, e.Time),
	}
}

// LowStock builds a digest of entries at or below their threshold.
func LowStock(entries []model.StockEntry) Message {
	var b strings.Builder
	b.WriteString("Running low:")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n- %s: %d left (threshold %d)", e.Medicine, e.Quantity, e.Threshold)
	}
	return Message{
		Kind:    model.NotifyLowStock,
		Subject: fmt.Sprintf("%d medicine(s) running low", len(entries)),
		Body:    b.String(),
	}
}

// Log writes notifications to the logger. It is the fallback when no
// provider is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "notify")}
}

func (l *Log) Notify(_ context.Context, msg Message) error {
	l.logger.Info("notification", "kind", msg.Kind, "subject", msg.Subject, "body", msg.Body)
	return nil
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
