package playback

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeObserver is a read-only source reporting a fixed partial view.
type fakeObserver struct {
	name  string
	kind  Kind
	patch Patch
}

func (f *fakeObserver) Name() string { return f.name }
func (f *fakeObserver) Kind() Kind   { return f.kind }
func (f *fakeObserver) State() Patch { return f.patch }

func TestCoordinator(t *testing.T) {
	Convey("Given a coordinator with a canonical store", t, func() {
		store := NewStore()
		c := NewCoordinator(store)

		Convey("State() starts at the default snapshot", func() {
			s := c.State()
			So(s.IsPlaying, ShouldBeFalse)
			So(s.CurrentTime, ShouldEqual, 0)
			So(s.Duration, ShouldEqual, 0)
			So(s.Volume, ShouldEqual, 1)
			So(s.IsMuted, ShouldBeFalse)
			So(s.PlaybackRate, ShouldEqual, 1)
		})

		Convey("SetState is last-write-wins per field", func() {
			c.SetState(Patch{CurrentTime: mo.Some(5.0)}, "clock")
			c.SetState(Patch{IsPlaying: mo.Some(true)}, "clock")
			c.SetState(Patch{CurrentTime: mo.Some(9.0)}, "clock")

			s := c.State()
			So(s.CurrentTime, ShouldEqual, 9.0)
			So(s.IsPlaying, ShouldBeTrue)

			Convey("and the canonical store saw every write", func() {
				So(store.Snapshot().CurrentTime, ShouldEqual, 9.0)
				So(store.Snapshot().IsPlaying, ShouldBeTrue)
			})
		})

		Convey("Register rejects a duplicate name and keeps the original", func() {
			first := &fakeObserver{name: "clock", kind: KindMediaObserver, patch: Patch{CurrentTime: mo.Some(1.0)}}
			second := &fakeObserver{name: "clock", kind: KindMediaObserver, patch: Patch{CurrentTime: mo.Some(99.0)}}
			c.Register(first)
			c.Register(second)

			c.SetState(Patch{CurrentTime: mo.Some(1.0)}, "test")
			conflicts := c.Reconcile()
			So(conflicts, ShouldBeEmpty) // first's view still in effect, not second's
		})

		Convey("Register rejects a second canonical source", func() {
			other := NewStore()
			c.Register(other)
			c.SetState(Patch{Volume: mo.Some(0.5)}, "test")
			// The original store remains the write-through target.
			So(store.Snapshot().Volume, ShouldEqual, 0.5)
			So(other.Snapshot().Volume, ShouldEqual, 1.0)
		})

		Convey("Unregister of an absent source is a no-op", func() {
			So(func() { c.Unregister("nope") }, ShouldNotPanic)
		})

		Convey("Reconciliation tolerates currentTime drift within 0.1s", func() {
			c.SetState(Patch{CurrentTime: mo.Some(12.0)}, "store")
			c.Register(&fakeObserver{
				name: "media", kind: KindMediaObserver,
				patch: Patch{CurrentTime: mo.Some(12.05)},
			})

			So(c.Reconcile(), ShouldBeEmpty)
		})

		Convey("Reconciliation reports exact-field mismatches once per pass", func() {
			c.SetState(Patch{PlaybackRate: mo.Some(1.0)}, "store")
			c.Register(&fakeObserver{
				name: "media", kind: KindMediaObserver,
				patch: Patch{PlaybackRate: mo.Some(1.5), CurrentTime: mo.Some(0.05)},
			})

			conflicts := c.Reconcile()
			So(conflicts, ShouldHaveLength, 1)
			So(conflicts[0].Source, ShouldEqual, "media")
			So(conflicts[0].Field, ShouldEqual, FieldPlaybackRate)
			So(conflicts[0].Expected, ShouldEqual, 1.0)
			So(conflicts[0].Actual, ShouldEqual, 1.5)

			Convey("and the conflict is diagnosed, not auto-resolved", func() {
				So(c.State().PlaybackRate, ShouldEqual, 1.0)
			})
		})

		Convey("ForceReconcileFrom promotes an observer's view", func() {
			c.Register(&fakeObserver{
				name: "media", kind: KindMediaObserver,
				patch: Patch{PlaybackRate: mo.Some(1.5)},
			})
			c.ForceReconcileFrom("media")
			So(c.State().PlaybackRate, ShouldEqual, 1.5)
		})

		Convey("ForceReconcileFrom of an unknown source is a no-op", func() {
			before := c.State()
			c.ForceReconcileFrom("ghost")
			So(c.State(), ShouldResemble, before)
		})

		Convey("Reset is idempotent", func() {
			c.Register(&fakeObserver{name: "media", kind: KindMediaObserver})
			c.SetState(Patch{IsPlaying: mo.Some(true), CurrentTime: mo.Some(42.0)}, "test")

			c.Reset()
			once := c.State()
			c.Reset()
			twice := c.State()

			So(once, ShouldResemble, DefaultState())
			So(twice, ShouldResemble, once)

			Convey("and only the canonical source survives", func() {
				// A re-registration of the same observer succeeds, proving
				// the old registration is gone.
				obs := &fakeObserver{name: "media", kind: KindMediaObserver, patch: Patch{Duration: mo.Some(7.0)}}
				c.Register(obs)
				conflicts := c.Reconcile()
				So(conflicts, ShouldHaveLength, 1)
				So(conflicts[0].Field, ShouldEqual, FieldDuration)
			})
		})
	})

	Convey("Given a coordinator with no canonical source", t, func() {
		c := NewCoordinator(nil)

		Convey("State() degrades to the cached snapshot", func() {
			So(c.State(), ShouldResemble, DefaultState())
		})

		Convey("SetState caches locally without an upstream target", func() {
			c.SetState(Patch{CurrentTime: mo.Some(3.0)}, "clock")
			So(c.State().CurrentTime, ShouldEqual, 3.0)
		})
	})
}
