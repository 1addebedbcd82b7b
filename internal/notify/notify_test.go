package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/dukerupert/pillbox/internal/model"
)

type fakeCreator struct {
	params []*openapi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestSMSNotify(t *testing.T) {
	fake := &fakeCreator{}
	sms := &SMS{api: fake, from: "15550001111", to: "+15552223333"}

	if err := sms.Notify(context.Background(), Message{Body: "take your pills"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fake.params) != 1 {
		t.Fatalf("calls = %d, want 1", len(fake.params))
	}
	p := fake.params[0]
	if *p.From != "+15550001111" {
		t.Errorf("From = %q, want normalized +15550001111", *p.From)
	}
	if *p.To != "+15552223333" {
		t.Errorf("To = %q", *p.To)
	}
	if *p.Body != "take your pills" {
		t.Errorf("Body = %q", *p.Body)
	}
}

func TestSMSMissingNumbers(t *testing.T) {
	sms := &SMS{api: &fakeCreator{}, from: "", to: "+1555"}
	if err := sms.Notify(context.Background(), Message{Body: "x"}); err == nil {
		t.Error("expected error for missing sender")
	}
	sms = &SMS{api: &fakeCreator{}, from: "+1555", to: " "}
	if err := sms.Notify(context.Background(), Message{Body: "x"}); err == nil {
		t.Error("expected error for missing recipient")
	}
}

type recordNotifier struct {
	got []Message
	err error
}

func (r *recordNotifier) Notify(_ context.Context, msg Message) error {
	r.got = append(r.got, msg)
	return r.err
}

func TestMultiJoinsErrors(t *testing.T) {
	ok := &recordNotifier{}
	bad := &recordNotifier{err: errors.New("boom")}
	m := Multi{bad, ok, NewLog(slog.Default())}

	err := m.Notify(context.Background(), Message{Body: "x"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want boom", err)
	}
	if len(ok.got) != 1 {
		t.Errorf("ok notifier got %d messages, want 1 even after earlier failure", len(ok.got))
	}
}

func TestLowStockDigest(t *testing.T) {
	msg := LowStock([]model.StockEntry{
		{Medicine: "Ibuprofen", Quantity: 5, Threshold: 10},
		{Medicine: "Zinc", Quantity: 0, Threshold: 2},
	})
	if msg.Kind != model.NotifyLowStock {
		t.Errorf("kind = %q", msg.Kind)
	}
	if !strings.Contains(msg.Body, "Ibuprofen: 5 left (threshold 10)") {
		t.Errorf("body = %q", msg.Body)
	}
	if msg.Subject != "2 medicine(s) running low" {
		t.Errorf("subject = %q", msg.Subject)
	}
}
