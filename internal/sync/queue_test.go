package sync

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/where"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQueueFailure(t *testing.T) {
	Convey("QueueFailure", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.AgentQueueFailures, true)

		Convey("Should append mutations as JSON lines", func() {
			So(QueueFailure("agent/actions", `{"type":"VIDEO_PLAYED"}`), ShouldBeNil)
			So(QueueFailure("checkpoints/cp-1/reflections", `{"text":"notes"}`), ShouldBeNil)

			pending := Pending()
			So(pending, ShouldHaveLength, 2)
			So(pending[0].Endpoint, ShouldEqual, "agent/actions")
			So(pending[1].Payload, ShouldContainSubstring, "notes")
		})

		Convey("Should be a no-op when queuing is disabled", func() {
			viper.Set(key.AgentQueueFailures, false)
			defer viper.Set(key.AgentQueueFailures, true)

			So(QueueFailure("agent/actions", `{}`), ShouldBeNil)
			So(Pending(), ShouldBeEmpty)
		})

		Convey("Should tolerate trailing garbage in the queue file", func() {
			So(QueueFailure("agent/actions", `{}`), ShouldBeNil)

			content, err := filesystem.API().ReadFile(where.SyncQueue())
			So(err, ShouldBeNil)
			content = append(content, []byte("garbage\n")...)
			So(filesystem.API().WriteFile(where.SyncQueue(), content, 0644), ShouldBeNil)

			So(Pending(), ShouldHaveLength, 1)
		})
	})
}

func TestReplayBackoff(t *testing.T) {
	Convey("replayBackoff", t, func() {
		Convey("Should grow with the queue position", func() {
			So(replayBackoff(0), ShouldBeLessThan, 250*time.Millisecond)
			So(replayBackoff(3), ShouldBeGreaterThanOrEqualTo, 800*time.Millisecond)
		})

		Convey("Should stay bounded for long queues", func() {
			for _, i := range []int{5, 10, 50, 1000} {
				So(replayBackoff(i), ShouldBeLessThan, 4*time.Second)
			}
		})
	})
}
