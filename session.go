package payluk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const sessionPath = "/v1/checkout/session"

// PayInput carries the business inputs for one checkout. The first three
// fields are required and must be non-blank after trimming; everything else
// is optional.
type PayInput struct {
	PaymentToken string `json:"paymentToken" validate:"notblank"`
	// Reference is the merchant's idempotency and tracking key for the session.
	Reference   string `json:"reference" validate:"notblank"`
	RedirectURL string `json:"redirectUrl" validate:"notblank"`

	LogoURL    string `json:"logoUrl,omitempty"`
	Brand      string `json:"brand,omitempty"`
	CustomerID string `json:"customerId,omitempty"`

	// Extra is shallow-merged on top of the composed invocation options and
	// may override any named field, including the callbacks. It is the escape
	// hatch for widget features not yet promoted to named options.
	Extra map[string]any `json:"-"`

	// OnResult and OnClose are invoked later by the widget, outside the SDK's
	// control. The SDK only threads them through the invocation options.
	OnResult func(result any) `json:"-"`
	OnClose  func()           `json:"-"`
}

type sessionRequest struct {
	PaymentToken string `json:"paymentToken"`
	RedirectURL  string `json:"redirectUrl"`
	Reference    string `json:"reference"`
	CustomerID   string `json:"customerId"`
	PublicKey    string `json:"publicKey"`
}

// sessionResponse is the backend's answer to a session request. Session is
// opaque to the SDK and forwarded to the widget unmodified.
type sessionResponse struct {
	Session any
	// Raw is the full decoded response body.
	Raw map[string]any
}

// createSession exchanges the pay inputs for a checkout session. Failures are
// normalized into the SDK taxonomy in order of detection: transport failures
// become network, non-success statuses become session_create, success
// statuses with unusable bodies become session_response. Nothing is retried.
func (c *Client) createSession(ctx context.Context, input PayInput) (*sessionResponse, error) {
	endpoint := c.BaseURL() + sessionPath
	payload, err := json.Marshal(sessionRequest{
		PaymentToken: strings.TrimSpace(input.PaymentToken),
		RedirectURL:  strings.TrimSpace(input.RedirectURL),
		Reference:    strings.TrimSpace(input.Reference),
		CustomerID:   strings.TrimSpace(input.CustomerID),
		PublicKey:    c.publicKey,
	})
	if err != nil {
		return nil, NewNetworkError("marshal session request: " + err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, NewNetworkError("build session request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	c.cfg.logger.Debug().Str("endpoint", endpoint).Str("reference", input.Reference).Msg("creating checkout session")
	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError("read session response: " + err.Error())
	}
	c.cfg.logger.Debug().Int("status", resp.StatusCode).Msg("session endpoint answered")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := fmt.Sprintf("failed to create session (HTTP %d)", resp.StatusCode)
		var details any = string(raw)
		var body map[string]any
		if json.Unmarshal(raw, &body) == nil {
			details = body
			if m, ok := body["message"].(string); ok && m != "" {
				message = m
			}
		}
		return nil, NewSessionCreateError(message, WithStatus(resp.StatusCode), WithDetails(details))
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, NewSessionResponseError("session endpoint returned a non-JSON body", WithStatus(resp.StatusCode))
	}
	session, ok := body["session"]
	if !ok {
		return nil, NewSessionResponseError("session endpoint response is missing the session field", WithStatus(resp.StatusCode), WithDetails(body))
	}
	return &sessionResponse{Session: session, Raw: body}, nil
}
