package payluk

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// EntryPoint is the callable a widget bundle publishes for the embedding
// page to invoke. It receives the invocation options composed by
// [Client.Pay] and returns nothing; the widget drives its own lifecycle
// afterwards.
type EntryPoint func(options map[string]any)

// ScriptRequest describes one widget bundle fetch.
type ScriptRequest struct {
	URL         string
	CrossOrigin CrossOriginMode
}

// Host is the browser-like environment able to fetch and execute a widget
// bundle. Executing the bundle is expected to publish its entry point via
// [RegisterEntryPoint] before LoadScript returns.
type Host interface {
	LoadScript(ctx context.Context, req ScriptRequest) error
}

// HostFunc lifts bare functions into [Host].
type HostFunc func(ctx context.Context, req ScriptRequest) error

// LoadScript executes the script load using the wrapped function.
func (f HostFunc) LoadScript(ctx context.Context, req ScriptRequest) error {
	return f(ctx, req)
}

var (
	hostMu     sync.RWMutex
	globalHost Host
)

// AttachHost installs the process-wide widget host. Pass nil to detach.
// A host set per client via [WithHost] takes precedence.
func AttachHost(h Host) {
	hostMu.Lock()
	globalHost = h
	hostMu.Unlock()
}

func attachedHost() Host {
	hostMu.RLock()
	defer hostMu.RUnlock()
	return globalHost
}

func resolveHost(c *Client) Host {
	if c != nil && c.cfg.host != nil {
		return c.cfg.host
	}
	return attachedHost()
}

var (
	registryMu  sync.RWMutex
	entryPoints = map[string]EntryPoint{}
)

// RegisterEntryPoint publishes a widget entry point under the given name,
// standing in for the global namespace a script would publish into. Widget
// bundles call it when executed; pages that embed the bundle manually can
// call it up front so no script load happens at all.
func RegisterEntryPoint(name string, fn EntryPoint) {
	if name == "" || fn == nil {
		panic("payluk: entry point registration requires a name and a callable")
	}
	registryMu.Lock()
	entryPoints[name] = fn
	registryMu.Unlock()
}

func lookupEntryPoint(name string) EntryPoint {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return entryPoints[name]
}

type loadOutcome struct {
	entry EntryPoint
	err   *Error
}

// scriptCache memoizes widget loads per script URL for the process lifetime.
// Failures stay cached: a failed URL is not retried until a fresh process.
type scriptCache struct {
	mu     sync.Mutex
	flight singleflight.Group
	done   map[string]loadOutcome
}

// loads is shared across every client in the process, the way independent
// call sites on one page converge on a single script tag.
var loads = &scriptCache{done: map[string]loadOutcome{}}

func (s *scriptCache) get(url string) (loadOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.done[url]
	return out, ok
}

func (s *scriptCache) store(url string, out loadOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.done[url]; !ok {
		s.done[url] = out
	}
}

// run executes fn under single-flight for url and memoizes its outcome.
// Concurrent callers for the same URL share one execution; later callers
// get the cached outcome without running fn again.
func (s *scriptCache) run(url string, fn func() loadOutcome) loadOutcome {
	if out, ok := s.get(url); ok {
		return out
	}
	v, _, _ := s.flight.Do(url, func() (any, error) {
		if out, ok := s.get(url); ok {
			return out, nil
		}
		out := fn()
		s.store(url, out)
		return out, nil
	})
	return v.(loadOutcome)
}

// loadEntryPoint resolves the widget entry point for this client's script
// URL, loading the bundle through the host at most once per URL.
func (c *Client) loadEntryPoint(ctx context.Context, host Host) (EntryPoint, error) {
	if host == nil {
		return nil, NewBrowserOnlyError()
	}
	name := c.cfg.entryPointName
	url := c.cfg.scriptURL
	if fn := lookupEntryPoint(name); fn != nil {
		loads.store(url, loadOutcome{entry: fn})
		return fn, nil
	}
	// The load outlives any single caller: its outcome is shared by every
	// pay call targeting this URL, so one caller's cancellation must not
	// poison the cache for the rest.
	loadCtx := context.WithoutCancel(ctx)
	out := loads.run(url, func() loadOutcome {
		c.cfg.logger.Debug().Str("script_url", url).Msg("loading widget bundle")
		if err := host.LoadScript(loadCtx, ScriptRequest{URL: url, CrossOrigin: c.cfg.crossOrigin}); err != nil {
			return loadOutcome{err: NewWidgetLoadError("widget script failed to load: " + err.Error())}
		}
		fn := lookupEntryPoint(name)
		if fn == nil {
			return loadOutcome{err: NewWidgetLoadError(fmt.Sprintf("widget script loaded but did not publish %q", name))}
		}
		return loadOutcome{entry: fn}
	})
	if out.err != nil {
		return nil, out.err
	}
	return out.entry, nil
}
