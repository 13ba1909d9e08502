package playback

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
)

const defaultTimeTolerance = 0.1

// Conflict describes a single field disagreement found during reconciliation.
// Conflicts are diagnosed and logged, never auto-resolved: resolution is a
// deliberate ForceReconcileFrom call by the owner, which avoids oscillation
// between sources that both believe they are right.
type Conflict struct {
	Source   string
	Field    Field
	Expected any
	Actual   any
}

// Coordinator is the single source of truth for playback state. It holds the
// canonical snapshot, mediates between registered sources by kind priority,
// and runs reconciliation passes that detect drift between sources.
//
// A Coordinator is explicitly constructed and passed down by the owning
// composition root; there is no package-level instance.
type Coordinator struct {
	mu        sync.Mutex
	canonical Writable
	sources   map[string]Source
	cache     State
	conflicts []Conflict
	tolerance float64

	reconciling atomic.Bool
}

// NewCoordinator creates a coordinator with the given canonical store, which
// self-registers as the single priority-1 source.
func NewCoordinator(canonical Writable) *Coordinator {
	tolerance := viper.GetFloat64(key.CoordinatorTimeTolerance)
	if tolerance <= 0 {
		tolerance = defaultTimeTolerance
	}

	c := &Coordinator{
		sources:   make(map[string]Source),
		cache:     DefaultState(),
		tolerance: tolerance,
	}
	if canonical != nil {
		c.canonical = canonical
		c.sources[canonical.Name()] = canonical
		c.cache = canonical.State().Apply(c.cache)
	}
	return c
}

// Register adds a source to the registry. A name collision keeps the original
// registration and logs a warning; a second canonical source is likewise
// rejected, since exactly one authoritative holder may exist.
func (c *Coordinator) Register(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sources[src.Name()]; exists {
		log.Warnf("playback: source %q already registered, keeping original", src.Name())
		return
	}
	if src.Kind() == KindCanonical && c.canonical != nil {
		log.Warnf("playback: canonical source already registered, ignoring %q", src.Name())
		return
	}

	c.sources[src.Name()] = src
	if src.Kind() == KindCanonical {
		if w, ok := src.(Writable); ok {
			c.canonical = w
		}
	}
	log.Debugf("playback: registered %s source %q", src.Kind(), src.Name())
}

// Unregister removes a source by name; a no-op if absent.
func (c *Coordinator) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, exists := c.sources[name]
	if !exists {
		return
	}
	delete(c.sources, name)
	if src.Kind() == KindCanonical {
		c.canonical = nil
	}
}

// State returns the canonical snapshot, falling back to the last cached one
// when no canonical source is registered. The fallback keeps reads alive
// before initialization finishes, degraded but not fatal.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canonical != nil {
		c.cache = c.canonical.State().Apply(c.cache)
	}
	return c.cache
}

// SetState writes a patch through to the canonical source on behalf of the
// named origin, then runs a reconciliation pass.
//
// A write arriving while another goroutine's reconciliation is in flight is
// dropped with a warning rather than queued; writes during a pass would
// corrupt the cache the pass is comparing against. Callers must re-issue if
// needed.
func (c *Coordinator) SetState(patch Patch, origin string) {
	if patch.IsEmpty() {
		return
	}
	if c.reconciling.Load() {
		log.Warnf("playback: dropped state write from %q: reconciliation in flight", origin)
		return
	}

	c.mu.Lock()
	if c.canonical == nil {
		// Design gap the caller must avoid: with no writable target the
		// patch only lands in the local cache and is never applied upstream.
		log.Warnf("playback: state write from %q cached only: no canonical source registered", origin)
	} else {
		c.canonical.Apply(patch)
	}
	c.cache = patch.Apply(c.cache)
	c.mu.Unlock()

	c.Reconcile()
}

// ForceReconcileFrom reads the named source's current view and re-applies it
// through SetState, promoting that view to canonical. This is the explicit
// resolution path for a detected conflict.
func (c *Coordinator) ForceReconcileFrom(name string) {
	c.mu.Lock()
	src, exists := c.sources[name]
	c.mu.Unlock()

	if !exists {
		log.Warnf("playback: cannot reconcile from unknown source %q", name)
		return
	}
	c.SetState(src.State(), name)
}

// Reconcile compares every non-canonical source's reported fields against the
// canonical snapshot and records a conflict per mismatch. CurrentTime gets a
// tolerance window since the player process and the store poll independently;
// every other field requires exact equality.
//
// Passes never interleave: a pass beginning while another is in flight is a
// no-op, guarding the cache from concurrent mutation.
func (c *Coordinator) Reconcile() []Conflict {
	if !c.reconciling.CompareAndSwap(false, true) {
		return nil
	}
	defer c.reconciling.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canonical != nil {
		c.cache = c.canonical.State().Apply(c.cache)
	}

	var conflicts []Conflict
	for name, src := range c.sources {
		if src.Kind() == KindCanonical {
			continue
		}

		reported := src.State()
		for _, field := range Fields() {
			actual, ok := reported.Get(field)
			if !ok {
				continue
			}
			expected := c.cache.Get(field)
			if c.equal(field, expected, actual) {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Source:   name,
				Field:    field,
				Expected: expected,
				Actual:   actual,
			})
			log.Warnf("playback: conflict on %s: source %q reports %v, canonical has %v", field, name, actual, expected)
		}
	}

	c.conflicts = conflicts
	return conflicts
}

// Conflicts returns the conflicts recorded by the most recent pass.
func (c *Coordinator) Conflicts() []Conflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Conflict(nil), c.conflicts...)
}

// Reset unregisters every source except the canonical one and restores the
// default snapshot. Calling it twice yields the same state as calling it once.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sources = make(map[string]Source)
	c.cache = DefaultState()
	c.conflicts = nil
	if c.canonical != nil {
		c.sources[c.canonical.Name()] = c.canonical
		c.canonical.Apply(FullPatch(c.cache))
	}
}

// equal compares a reported field value against the canonical one, applying
// the time tolerance for CurrentTime.
func (c *Coordinator) equal(field Field, expected, actual any) bool {
	if field == FieldCurrentTime {
		e, eok := expected.(float64)
		a, aok := actual.(float64)
		if eok && aok {
			return math.Abs(e-a) <= c.tolerance
		}
	}
	return expected == actual
}
