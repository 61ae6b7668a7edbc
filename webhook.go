package payluk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/jerozeek/payluk-go/signature"
)

// ResultEventType enumerates the payment result events Payluk delivers to
// merchant backends after the widget completes.
type ResultEventType string

const (
	ResultEventTypePaymentSucceeded ResultEventType = "payment_succeeded"
	ResultEventTypePaymentFailed    ResultEventType = "payment_failed"
)

// EscrowStatus tracks where the buyer's funds sit after a successful payment.
type EscrowStatus string

const (
	EscrowStatusFunded   EscrowStatus = "funded"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
)

// PaymentSucceeded is the payload of a payment_succeeded event.
type PaymentSucceeded struct {
	Reference    string       `json:"reference"`
	SessionID    string       `json:"sessionId"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	EscrowStatus EscrowStatus `json:"escrowStatus"`
}

// PaymentFailed is the payload of a payment_failed event.
type PaymentFailed struct {
	Reference string `json:"reference"`
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// ResultEvent is one signed result delivery. Data is a union of
// [PaymentSucceeded] and [PaymentFailed], discriminated by Type.
type ResultEvent struct {
	Type ResultEventType `json:"type"`
	Data ResultData      `json:"data"`
}

// ResultData holds the union payload of a result event.
type ResultData struct {
	union json.RawMessage
}

// AsPaymentSucceeded returns the union data inside the ResultData as a PaymentSucceeded.
func (t ResultData) AsPaymentSucceeded() (PaymentSucceeded, error) {
	var body PaymentSucceeded
	err := json.Unmarshal(t.union, &body)
	return body, err
}

// FromPaymentSucceeded overwrites any union data inside the ResultData as the provided PaymentSucceeded.
func (t *ResultData) FromPaymentSucceeded(v PaymentSucceeded) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

// MergePaymentSucceeded performs a merge with any union data inside the ResultData, using the provided PaymentSucceeded.
func (t *ResultData) MergePaymentSucceeded(v PaymentSucceeded) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	merged, err := runtime.JSONMerge(t.union, b)
	t.union = merged
	return err
}

// AsPaymentFailed returns the union data inside the ResultData as a PaymentFailed.
func (t ResultData) AsPaymentFailed() (PaymentFailed, error) {
	var body PaymentFailed
	err := json.Unmarshal(t.union, &body)
	return body, err
}

// FromPaymentFailed overwrites any union data inside the ResultData as the provided PaymentFailed.
func (t *ResultData) FromPaymentFailed(v PaymentFailed) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

// MergePaymentFailed performs a merge with any union data inside the ResultData, using the provided PaymentFailed.
func (t *ResultData) MergePaymentFailed(v PaymentFailed) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	merged, err := runtime.JSONMerge(t.union, b)
	t.union = merged
	return err
}

// MarshalJSON serializes the underlying union for ResultData.
func (t ResultData) MarshalJSON() ([]byte, error) {
	b, err := t.union.MarshalJSON()
	return b, err
}

// UnmarshalJSON loads union data for ResultData.
func (t *ResultData) UnmarshalJSON(b []byte) error {
	err := t.union.UnmarshalJSON(b)
	return err
}

type resultConfig struct {
	maxClockSkew time.Duration
	clock        func() time.Time
}

// ResultOption customizes webhook verification behavior.
type ResultOption func(*resultConfig)

// WithResultMaxClockSkew sets the tolerated absolute difference between the
// delivery timestamp and the server clock.
func WithResultMaxClockSkew(skew time.Duration) ResultOption {
	if skew <= 0 {
		panic("payluk: max clock skew must be positive")
	}
	return func(cfg *resultConfig) {
		cfg.maxClockSkew = skew
	}
}

// resultWithClock provides deterministic time in tests.
func resultWithClock(fn func() time.Time) ResultOption {
	return func(cfg *resultConfig) {
		cfg.clock = fn
	}
}

// ParseResultEvent verifies a signed result delivery and decodes the event.
// sig and timestamp come from the Payluk-Signature and Payluk-Timestamp
// headers of the delivery; key is the merchant's webhook secret. The
// signature covers `RFC3339(timestamp) + "." + canonicalJSON(body)` and
// deliveries older than the allowed clock skew are rejected.
func ParseResultEvent(body []byte, sig, timestamp string, key []byte, opts ...ResultOption) (*ResultEvent, error) {
	cfg := resultConfig{
		maxClockSkew: 5 * time.Minute,
		clock:        time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	sig = strings.TrimSpace(sig)
	if sig == "" {
		return nil, errors.New("payluk: webhook signature is required")
	}
	ts, err := signature.ParseTimestamp(strings.TrimSpace(timestamp))
	if err != nil {
		return nil, fmt.Errorf("payluk: webhook timestamp must be RFC3339: %w", err)
	}
	ts = ts.UTC()
	if cfg.maxClockSkew > 0 {
		if skew := signature.AbsDuration(cfg.clock().Sub(ts)); skew > cfg.maxClockSkew {
			return nil, fmt.Errorf("payluk: webhook timestamp skew exceeds %s", cfg.maxClockSkew)
		}
	}
	canonicalBody, err := signature.CanonicalizeJSON(body)
	if err != nil {
		return nil, errors.New("payluk: webhook body must be valid JSON")
	}
	verifier := signature.HMACVerifier{Key: key}
	if err := verifier.Verify(signature.Material{
		Signature:     sig,
		Timestamp:     ts,
		CanonicalBody: canonicalBody,
	}); err != nil {
		return nil, errors.New("payluk: webhook signature verification failed")
	}

	var event ResultEvent
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&event); err != nil {
		return nil, fmt.Errorf("payluk: decode webhook event: %w", err)
	}
	if dec.More() {
		return nil, errors.New("payluk: unexpected data after webhook event")
	}
	if event.Type == "" {
		return nil, errors.New("payluk: webhook event type is required")
	}
	return &event, nil
}
