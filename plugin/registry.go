package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/issuance"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit          []OnInit
	onShutdown      []OnShutdown
	onNumberIssued  []OnNumberIssued
	onNumberPeeked  []OnNumberPeeked
	onIssueFailed   []OnIssueFailed
	onCounterSeeded []OnCounterSeeded
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnNumberIssued); ok {
		r.onNumberIssued = append(r.onNumberIssued, v)
	}
	if v, ok := p.(OnNumberPeeked); ok {
		r.onNumberPeeked = append(r.onNumberPeeked, v)
	}
	if v, ok := p.(OnIssueFailed); ok {
		r.onIssueFailed = append(r.onIssueFailed, v)
	}
	if v, ok := p.(OnCounterSeeded); ok {
		r.onCounterSeeded = append(r.onCounterSeeded, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	typ  reflect.Type
	name string
}{
	{reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit"},
	{reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown"},
	{reflect.TypeOf((*OnNumberIssued)(nil)).Elem(), "OnNumberIssued"},
	{reflect.TypeOf((*OnNumberPeeked)(nil)).Elem(), "OnNumberPeeked"},
	{reflect.TypeOf((*OnIssueFailed)(nil)).Elem(), "OnIssueFailed"},
	{reflect.TypeOf((*OnCounterSeeded)(nil)).Elem(), "OnCounterSeeded"},
}

// implementedInterfaces returns the hook names implemented by the plugin.
func implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			interfaces = append(interfaces, h.name)
		}
	}
	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, s interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnInit", p.Name(), func() error {
			return p.OnInit(ctx, s)
		})
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnShutdown", p.Name(), func() error {
			return p.OnShutdown(ctx)
		})
	}
}

// EmitNumberIssued emits a number issued event.
func (r *Registry) EmitNumberIssued(ctx context.Context, iss *issuance.Issuance) {
	r.mu.RLock()
	plugins := r.onNumberIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnNumberIssued", p.Name(), func() error {
			return p.OnNumberIssued(ctx, iss)
		})
	}
}

// EmitNumberPeeked emits a number peeked event.
func (r *Registry) EmitNumberPeeked(ctx context.Context, preview *issuance.Preview) {
	r.mu.RLock()
	plugins := r.onNumberPeeked
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnNumberPeeked", p.Name(), func() error {
			return p.OnNumberPeeked(ctx, preview)
		})
	}
}

// EmitIssueFailed emits an issue failed event.
func (r *Registry) EmitIssueFailed(ctx context.Context, series, key string, issueErr error) {
	r.mu.RLock()
	plugins := r.onIssueFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnIssueFailed", p.Name(), func() error {
			return p.OnIssueFailed(ctx, series, key, issueErr)
		})
	}
}

// EmitCounterSeeded emits a counter seeded event.
func (r *Registry) EmitCounterSeeded(ctx context.Context, report *backfill.Report) {
	r.mu.RLock()
	plugins := r.onCounterSeeded
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnCounterSeeded", p.Name(), func() error {
			return p.OnCounterSeeded(ctx, report)
		})
	}
}

func (r *Registry) dispatch(ctx context.Context, hook, pluginName string, fn func() error) {
	if err := r.callWithTimeout(ctx, pluginName, fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", pluginName,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block issuance.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
