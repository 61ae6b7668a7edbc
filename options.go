package payluk

import (
	"net/http"

	"github.com/rs/zerolog"
)

// CrossOriginMode governs how the widget host requests cross-origin script
// resources, mirroring the crossorigin attribute of a script element.
type CrossOriginMode string

const (
	CrossOriginUnset          CrossOriginMode = ""
	CrossOriginAnonymous      CrossOriginMode = "anonymous"
	CrossOriginUseCredentials CrossOriginMode = "use-credentials"
)

const (
	// DefaultScriptURL is where the hosted widget bundle is served from.
	DefaultScriptURL = "https://checkout.payluk.com/v1/inline.js"
	// DefaultEntryPointName is the name the bundle publishes its callable under.
	DefaultEntryPointName = "PaylukCheckout"
)

type config struct {
	scriptURL      string
	entryPointName string
	crossOrigin    CrossOriginMode
	httpClient     *http.Client
	host           Host
	logger         zerolog.Logger
}

func defaultConfig() config {
	return config{
		scriptURL:      DefaultScriptURL,
		entryPointName: DefaultEntryPointName,
		httpClient:     http.DefaultClient,
		logger:         zerolog.Nop(),
	}
}

// Option customizes a [Client].
type Option func(*config)

// WithScriptURL overrides where the widget bundle is fetched from.
func WithScriptURL(url string) Option {
	if url == "" {
		panic("payluk: script URL must not be empty")
	}
	return func(cfg *config) {
		cfg.scriptURL = url
	}
}

// WithEntryPointName overrides the name the bundle is expected to publish
// its entry point under.
func WithEntryPointName(name string) Option {
	if name == "" {
		panic("payluk: entry point name must not be empty")
	}
	return func(cfg *config) {
		cfg.entryPointName = name
	}
}

// WithCrossOrigin sets the cross-origin mode used when loading the bundle.
func WithCrossOrigin(mode CrossOriginMode) Option {
	return func(cfg *config) {
		cfg.crossOrigin = mode
	}
}

// WithHTTPClient replaces the HTTP client used for session requests.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) {
		if client != nil {
			cfg.httpClient = client
		}
	}
}

// WithHost attaches a widget host to this client only, taking precedence
// over the process-wide host installed by [AttachHost].
func WithHost(host Host) Option {
	return func(cfg *config) {
		cfg.host = host
	}
}

// WithLogger enables SDK debug logging. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
