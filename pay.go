package payluk

import (
	"context"
	"maps"

	"golang.org/x/sync/errgroup"
)

// Pay runs one checkout on the default client stored by [Initialize].
func Pay(ctx context.Context, input PayInput) error {
	return pay(ctx, Default(), input)
}

// Pay validates the inputs, then concurrently creates a checkout session and
// resolves the widget entry point, and invokes the entry point exactly once
// with the combined result. The call returns once the entry point has been
// invoked; the widget's own lifecycle (result and close callbacks) happens
// later, outside this call.
//
// Preconditions are checked in a fixed order and the first failure wins: a
// widget host must be reachable (browser_only), the client must be configured
// (not_initialized), then PaymentToken, Reference, and RedirectURL must each
// be non-blank (invalid_input).
func (c *Client) Pay(ctx context.Context, input PayInput) error {
	return pay(ctx, c, input)
}

func pay(ctx context.Context, c *Client, input PayInput) error {
	host := resolveHost(c)
	if host == nil {
		return NewBrowserOnlyError()
	}
	if c == nil || c.publicKey == "" {
		return NewNotInitializedError()
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Two-branch fan-out, first failure wins. Neither branch is cancelled by
	// the other failing; both run to completion and the losing outcome is
	// discarded.
	var (
		session *sessionResponse
		entry   EntryPoint
	)
	var g errgroup.Group
	g.Go(func() error {
		s, err := c.createSession(ctx, input)
		if err != nil {
			return err
		}
		session = s
		return nil
	})
	g.Go(func() error {
		fn, err := c.loadEntryPoint(ctx, host)
		if err != nil {
			return err
		}
		entry = fn
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	entry(invocationOptions(c, input, session))
	c.cfg.logger.Debug().Str("reference", input.Reference).Msg("widget entry point invoked")
	return nil
}

// invocationOptions composes the options mapping handed to the entry point.
// Extra is merged last and may override any named field.
func invocationOptions(c *Client, input PayInput, session *sessionResponse) map[string]any {
	opts := map[string]any{
		"session":   session.Session,
		"publicKey": c.publicKey,
	}
	if input.LogoURL != "" {
		opts["logoUrl"] = input.LogoURL
	}
	if input.Brand != "" {
		opts["brand"] = input.Brand
	}
	if input.CustomerID != "" {
		opts["customerId"] = input.CustomerID
	}
	if input.OnResult != nil {
		opts["onResult"] = input.OnResult
	}
	if input.OnClose != nil {
		opts["onClose"] = input.OnClose
	}
	maps.Copy(opts, input.Extra)
	return opts
}
