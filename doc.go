// Package payluk is the Go SDK for the Payluk inline escrow checkout.
//
// Configure a merchant client once with [New] (or store a process-wide
// default via [Initialize]), then call [Client.Pay] to run a transaction.
// Pay creates a short-lived checkout session against the Payluk backend and,
// concurrently, makes sure the hosted widget bundle is loaded at most once
// per script URL, no matter how many callers race, before invoking the entry
// point the bundle publishes.
//
// The backend environment is selected by the publishable key: keys with the
// pk_live_ prefix target production, anything else targets staging. Callers
// never configure endpoints directly.
//
// # Widget hosts
//
// The widget bundle runs in a browser-like environment the SDK does not own.
// Embedders provide one by implementing [Host] (a wasm bridge, an embedded JS
// engine, or a test double) and attaching it with [AttachHost] or the
// per-client [WithHost] option. The loaded bundle publishes its callable via
// [RegisterEntryPoint]; pages that embed the bundle ahead of time can register
// it up front and no load is performed.
//
// The result and close callbacks threaded through [PayInput] are opaque to
// the SDK: they are handed to the widget inside the invocation options and
// fire later, outside [Client.Pay], under the widget's control.
//
// # Result webhooks
//
// After the widget completes, Payluk notifies the merchant backend with a
// signed result webhook. [ParseResultEvent] verifies the HMAC signature over
// the canonical JSON body and decodes the event, whose payload is either a
// [PaymentSucceeded] or a [PaymentFailed].
package payluk
