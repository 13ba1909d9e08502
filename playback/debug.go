package playback

import (
	"os"
	"sync"
)

// EnvDebug enables the diagnostic inspection surface when set to a non-empty
// value. Diagnostic only, no contract.
const EnvDebug = "UNPUZZLE_DEBUG"

var (
	debugMu          sync.Mutex
	debugCoordinator *Coordinator
	debugTracker     *Tracker
)

// ExposeForDebug registers the active coordinator and tracker on the debug
// surface so they can be inspected at runtime. A no-op unless UNPUZZLE_DEBUG
// is set.
func ExposeForDebug(c *Coordinator, t *Tracker) {
	if os.Getenv(EnvDebug) == "" {
		return
	}
	debugMu.Lock()
	defer debugMu.Unlock()
	debugCoordinator = c
	debugTracker = t
}

// DebugDump contains a point-in-time view of the coordination core.
type DebugDump struct {
	State     State      `json:"state"`
	Conflicts []Conflict `json:"conflicts"`
	Tracker   Stats      `json:"tracker"`
}

// Dump snapshots the debug surface. Returns false when nothing is exposed.
func Dump() (DebugDump, bool) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if debugCoordinator == nil {
		return DebugDump{}, false
	}
	d := DebugDump{
		State:     debugCoordinator.State(),
		Conflicts: debugCoordinator.Conflicts(),
	}
	if debugTracker != nil {
		d.Tracker = debugTracker.Stats()
	}
	return d, true
}
