package payluk

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/jerozeek/payluk-go/signature"
)

func signedEvent(t *testing.T, key []byte, ts time.Time, event ResultEvent) (body []byte, sig string) {
	t.Helper()
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	canonical, err := signature.CanonicalizeJSON(body)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	return body, signature.Sign(key, ts, canonical)
}

func succeededEvent(t *testing.T) ResultEvent {
	t.Helper()
	var data ResultData
	if err := data.FromPaymentSucceeded(PaymentSucceeded{
		Reference:    "order-1",
		SessionID:    "sess_42",
		Amount:       5000,
		Currency:     "usd",
		EscrowStatus: EscrowStatusFunded,
	}); err != nil {
		t.Fatalf("build payload: %v", err)
	}
	return ResultEvent{Type: ResultEventTypePaymentSucceeded, Data: data}
}

func TestParseResultEventAcceptsValidDelivery(t *testing.T) {
	t.Parallel()

	key := []byte("webhook-secret")
	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	body, sig := signedEvent(t, key, ts, succeededEvent(t))

	event, err := ParseResultEvent(body, sig, ts.Format(time.RFC3339Nano), key,
		resultWithClock(func() time.Time { return ts.Add(30 * time.Second) }))
	if err != nil {
		t.Fatalf("ParseResultEvent() error = %v", err)
	}
	if event.Type != ResultEventTypePaymentSucceeded {
		t.Fatalf("unexpected event type %s", event.Type)
	}
	payload, err := event.Data.AsPaymentSucceeded()
	if err != nil {
		t.Fatalf("AsPaymentSucceeded() error = %v", err)
	}
	if payload.Reference != "order-1" || payload.SessionID != "sess_42" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.EscrowStatus != EscrowStatusFunded {
		t.Fatalf("unexpected escrow status %s", payload.EscrowStatus)
	}
}

func TestParseResultEventFailedPayload(t *testing.T) {
	t.Parallel()

	key := []byte("webhook-secret")
	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	var data ResultData
	if err := data.FromPaymentFailed(PaymentFailed{
		Reference: "order-2",
		SessionID: "sess_43",
		Code:      "card_declined",
		Reason:    "insufficient funds",
	}); err != nil {
		t.Fatalf("build payload: %v", err)
	}
	body, sig := signedEvent(t, key, ts, ResultEvent{Type: ResultEventTypePaymentFailed, Data: data})

	event, err := ParseResultEvent(body, sig, ts.Format(time.RFC3339Nano), key,
		resultWithClock(func() time.Time { return ts }))
	if err != nil {
		t.Fatalf("ParseResultEvent() error = %v", err)
	}
	payload, err := event.Data.AsPaymentFailed()
	if err != nil {
		t.Fatalf("AsPaymentFailed() error = %v", err)
	}
	if payload.Code != "card_declined" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestParseResultEventRejections(t *testing.T) {
	t.Parallel()

	key := []byte("webhook-secret")
	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	body, sig := signedEvent(t, key, ts, succeededEvent(t))

	tests := map[string]struct {
		body      []byte
		sig       string
		timestamp string
		clock     time.Time
	}{
		"tampered body": {
			body:      bytes.Replace(body, []byte("order-1"), []byte("order-9"), 1),
			sig:       sig,
			timestamp: ts.Format(time.RFC3339Nano),
			clock:     ts,
		},
		"wrong signature": {
			body:      body,
			sig:       "bm90LXRoZS1zaWduYXR1cmU",
			timestamp: ts.Format(time.RFC3339Nano),
			clock:     ts,
		},
		"missing signature": {
			body:      body,
			sig:       "  ",
			timestamp: ts.Format(time.RFC3339Nano),
			clock:     ts,
		},
		"stale timestamp": {
			body:      body,
			sig:       sig,
			timestamp: ts.Format(time.RFC3339Nano),
			clock:     ts.Add(10 * time.Minute),
		},
		"malformed timestamp": {
			body:      body,
			sig:       sig,
			timestamp: "yesterday",
			clock:     ts,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			clock := tt.clock
			_, err := ParseResultEvent(tt.body, tt.sig, tt.timestamp, key,
				resultWithClock(func() time.Time { return clock }))
			if err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestParseResultEventRequiresEventType(t *testing.T) {
	t.Parallel()

	key := []byte("webhook-secret")
	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"data":{"reference":"order-1"}}`)
	canonical, err := signature.CanonicalizeJSON(body)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	sig := signature.Sign(key, ts, canonical)

	_, err = ParseResultEvent(body, sig, ts.Format(time.RFC3339), key,
		resultWithClock(func() time.Time { return ts }))
	if err == nil {
		t.Fatalf("expected rejection for missing event type")
	}
}
