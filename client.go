package payluk

import (
	"strings"
	"sync"
)

const (
	livePrefix     = "pk_live_"
	liveBaseURL    = "https://api.payluk.com"
	stagingBaseURL = "https://api.staging.payluk.com"
)

// Client holds one resolved merchant configuration. Construct it with [New]
// and pass it around explicitly, or rely on the process-wide default stored
// by [Initialize]. A Client is immutable and safe for concurrent use.
type Client struct {
	publicKey string
	cfg       config
}

// New builds a Client from a publishable key and optional overrides. The key
// is trimmed and must be non-blank. The key's prefix selects the backend
// environment; see [Client.BaseURL].
func New(publicKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(publicKey)
	if key == "" {
		return nil, NewInvalidInputError("publicKey is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Client{publicKey: key, cfg: cfg}, nil
}

// PublicKey returns the trimmed publishable key this client was built with.
func (c *Client) PublicKey() string {
	return c.publicKey
}

// BaseURL reports the backend this client targets: keys prefixed with
// pk_live_ route to production, everything else to staging.
func (c *Client) BaseURL() string {
	if strings.HasPrefix(c.publicKey, livePrefix) {
		return liveBaseURL
	}
	return stagingBaseURL
}

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
)

// Initialize stores the process-wide default client used by the package-level
// [Pay]. Calling it again replaces the previous configuration outright; no
// merge happens and no error is raised. Replacing the configuration does not
// touch widget loads already cached under the old script URL; those entries
// stay keyed by that URL for the rest of the process.
func Initialize(publicKey string, opts ...Option) error {
	client, err := New(publicKey, opts...)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defaultClient = client
	defaultMu.Unlock()
	return nil
}

// Default returns the client stored by [Initialize], or nil before the first
// successful call.
func Default() *Client {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultClient
}
