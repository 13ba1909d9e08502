package playback

// Kind classifies a registered state source. Using a closed set of kinds
// (rather than an open string-keyed registry) makes invalid registrations a
// compile-time concern and pins priority/writability to the role itself.
type Kind int

const (
	// KindCanonical marks the single writable, authoritative state holder.
	KindCanonical Kind = iota + 1
	// KindMediaObserver marks a read-only observer backed by the player process.
	KindMediaObserver
	// KindDebugObserver marks a read-only diagnostic observer.
	KindDebugObserver
)

// Priority returns the authority ranking of the kind; lower is more authoritative.
func (k Kind) Priority() int {
	return int(k)
}

// Writable reports whether sources of this kind accept state writes.
// Only the canonical source is writable; every other registered source is a
// read-only observer, so concurrent-write races are prevented structurally.
func (k Kind) Writable() bool {
	return k == KindCanonical
}

func (k Kind) String() string {
	switch k {
	case KindCanonical:
		return "canonical"
	case KindMediaObserver:
		return "media-observer"
	case KindDebugObserver:
		return "debug-observer"
	default:
		return "unknown"
	}
}

// Source is a registered producer/observer of playback state.
// State reports only the fields the source actually observes.
type Source interface {
	Name() string
	Kind() Kind
	State() Patch
}

// Writable is a Source that additionally accepts state writes.
// The Coordinator writes through to the canonical source via this interface.
type Writable interface {
	Source
	Apply(Patch)
}
