// Package signature implements the primitives behind Payluk webhook
// signatures: HMAC-SHA256 over the canonical JSON form of the payload,
// prefixed with the delivery timestamp.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	canonicaljson "github.com/gibson042/canonicaljson-go"
)

// Material captures the inputs needed to validate a signed webhook delivery.
type Material struct {
	Signature     string
	Timestamp     time.Time
	CanonicalBody []byte
}

// Verifier validates the authenticity of a webhook delivery.
type Verifier interface {
	Verify(material Material) error
}

// VerifierFunc lifts bare functions into [Verifier].
type VerifierFunc func(material Material) error

// Verify delegates to the wrapped function.
func (f VerifierFunc) Verify(material Material) error {
	return f(material)
}

// HMACVerifier validates signatures that were produced by taking the
// base64url-encoded HMAC-SHA256 of `RFC3339(timestamp) + "." + canonicalJSON`.
type HMACVerifier struct {
	Key []byte
}

// Verify implements [Verifier] by recomputing the expected HMAC signature.
func (v HMACVerifier) Verify(material Material) error {
	if len(v.Key) == 0 {
		return errors.New("signature: HMACVerifier requires a non-empty key")
	}
	expected := computeHMAC(v.Key, BuildSigningPayload(material.Timestamp, material.CanonicalBody))
	decoded, err := base64.RawURLEncoding.DecodeString(material.Signature)
	if err != nil {
		return fmt.Errorf("signature: decode signature: %w", err)
	}
	if !hmac.Equal(decoded, expected) {
		return errors.New("signature: invalid signature")
	}
	return nil
}

// Sign produces the signature Payluk attaches to a webhook delivery. It is
// exported so merchant test suites can forge valid deliveries.
func Sign(key []byte, ts time.Time, canonicalBody []byte) string {
	return base64.RawURLEncoding.EncodeToString(computeHMAC(key, BuildSigningPayload(ts, canonicalBody)))
}

func computeHMAC(key, signingInput []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(signingInput)
	return mac.Sum(nil)
}

// CanonicalizeJSON normalizes arbitrary JSON into canonical form for signing.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("null"), nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("signature: multiple JSON documents in body")
	}
	return canonicaljson.Marshal(payload)
}

// ParseTimestamp accepts timestamp header values in RFC3339 or RFC3339Nano format.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("signature: empty timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

// AbsDuration returns the absolute value of the supplied duration.
func AbsDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// BuildSigningPayload constructs the canonical string that is HMAC-signed.
func BuildSigningPayload(ts time.Time, canonicalBody []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(ts.UTC().Format(time.RFC3339Nano))
	buf.WriteByte('.')
	buf.Write(canonicalBody)
	return buf.Bytes()
}
