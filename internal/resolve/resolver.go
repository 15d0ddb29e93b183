// Package resolve performs best-effort reverse-DNS lookups for the
// client addresses appearing in a usage report. Resolution decorates
// report keys only: it never changes which requests were counted.
package resolve

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/geopython/geousage/internal/model"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers bounds concurrent lookups so hostile or very large
	// logs cannot fan out without limit.
	DefaultWorkers = 8
	// DefaultTimeout is the per-lookup deadline; one unreachable host
	// must not stall the others.
	DefaultTimeout = 2 * time.Second
)

// LookupFunc is the reverse-lookup capability supplied by the host
// environment: address in, hostnames out.
type LookupFunc func(ctx context.Context, addr string) ([]string, error)

// Resolver caches reverse-DNS results per run. Each distinct address is
// resolved at most once; failures are recorded as unresolved, never
// surfaced as errors.
type Resolver struct {
	lookup  LookupFunc
	timeout time.Duration
	workers int

	mu    sync.Mutex
	cache map[string]model.ResolvedHost
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup replaces the default system resolver, mainly for tests.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) { r.lookup = fn }
}

// WithTimeout sets the per-lookup deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithWorkers sets the lookup pool size.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Resolver backed by the system resolver unless
// overridden.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		lookup:  net.DefaultResolver.LookupAddr,
		timeout: DefaultTimeout,
		workers: DefaultWorkers,
		cache:   make(map[string]model.ResolvedHost),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the cached outcome for addr, performing the lookup on
// first use. It never returns an error: failure, timeout, and malformed
// addresses all yield an unresolved marker.
func (r *Resolver) Resolve(ctx context.Context, addr string) model.ResolvedHost {
	r.mu.Lock()
	if cached, ok := r.cache[addr]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	host := r.doLookup(ctx, addr)

	// Idempotent under concurrent requests for the same address: first
	// completed lookup wins, later ones return the cached value.
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[addr]; ok {
		return cached
	}
	r.cache[addr] = host
	return host
}

func (r *Resolver) doLookup(ctx context.Context, addr string) model.ResolvedHost {
	unresolved := model.ResolvedHost{Addr: addr}

	if net.ParseIP(addr) == nil {
		return unresolved
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := r.lookup(ctx, addr)
	if err != nil || len(names) == 0 {
		return unresolved
	}

	return model.ResolvedHost{
		Addr:     addr,
		Hostname: strings.TrimSuffix(names[0], "."),
		Resolved: true,
	}
}

// ResolveAll resolves a set of addresses with a bounded worker pool and
// returns the outcome per address. Cancelling ctx makes still-pending
// lookups resolve to the failure marker instead of blocking the report.
func (r *Resolver) ResolveAll(ctx context.Context, addrs []string) map[string]model.ResolvedHost {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, addr := range addrs {
		g.Go(func() error {
			r.Resolve(ctx, addr)
			return nil
		})
	}
	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()

	out := make(map[string]model.ResolvedHost, len(addrs))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, addr := range addrs {
		if host, ok := r.cache[addr]; ok {
			out[addr] = host
		} else {
			out[addr] = model.ResolvedHost{Addr: addr}
		}
	}
	return out
}
