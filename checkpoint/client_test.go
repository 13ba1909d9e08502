package checkpoint

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/unpuzzle-app/unpuzzle/key"
)

func withServer(handler http.HandlerFunc) *httptest.Server {
	server := httptest.NewServer(handler)
	viper.Set(key.APIBaseURL, server.URL)
	viper.Set(key.CheckpointsEnable, true)
	return server
}

func TestGetVideoCheckpoints(t *testing.T) {
	Convey("GetVideoCheckpoints", t, func() {
		Convey("Should decode the checkpoint list", func(c C) {
			server := withServer(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Path, ShouldEqual, "/videos/vid-1/checkpoints")
				json.NewEncoder(w).Encode([]Checkpoint{
					{ID: "cp-1", VideoID: "vid-1", Time: 30, Kind: Quiz, Question: "What holds canonical state?"},
					{ID: "cp-2", VideoID: "vid-1", Time: 95, Kind: Reflection, Prompt: "Summarize the section."},
				})
			})
			defer server.Close()

			checkpoints, err := GetVideoCheckpoints("vid-1")

			So(err, ShouldBeNil)
			So(checkpoints, ShouldHaveLength, 2)
			So(checkpoints[0].Kind, ShouldEqual, Quiz)
			So(checkpoints[1].Time, ShouldEqual, 95)
		})

		Convey("Should return nil when the video has no checkpoints", func() {
			server := withServer(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})
			defer server.Close()

			checkpoints, err := GetVideoCheckpoints("vid-unknown")

			So(err, ShouldBeNil)
			So(checkpoints, ShouldBeNil)
		})

		Convey("Should degrade gracefully on server errors", func() {
			server := withServer(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})
			defer server.Close()

			checkpoints, err := GetVideoCheckpoints("vid-1")

			So(err, ShouldBeNil)
			So(checkpoints, ShouldBeNil)
		})

		Convey("Should skip the API entirely when checkpoints are disabled", func() {
			viper.Set(key.CheckpointsEnable, false)
			defer viper.Set(key.CheckpointsEnable, true)

			checkpoints, err := GetVideoCheckpoints("vid-1")

			So(err, ShouldBeNil)
			So(checkpoints, ShouldBeNil)
		})
	})
}

func TestCheckpointMutations(t *testing.T) {
	Convey("Checkpoint mutations", t, func() {
		Convey("CreateCheckpoint posts to the video's collection", func(c C) {
			var got Checkpoint
			server := withServer(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.Method, ShouldEqual, http.MethodPost)
				c.So(r.URL.Path, ShouldEqual, "/videos/vid-1/checkpoints")
				c.So(json.NewDecoder(r.Body).Decode(&got), ShouldBeNil)
				json.NewEncoder(w).Encode(Result{Success: true})
			})
			defer server.Close()

			result, err := CreateCheckpoint(Checkpoint{VideoID: "vid-1", Time: 12, Kind: VoiceMemo})

			So(err, ShouldBeNil)
			So(result.Success, ShouldBeTrue)
			So(got.Kind, ShouldEqual, VoiceMemo)
			So(got.Time, ShouldEqual, 12)
		})

		Convey("DeleteCheckpoint surfaces the platform's rejection", func(c C) {
			server := withServer(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.Method, ShouldEqual, http.MethodDelete)
				json.NewEncoder(w).Encode(Result{Success: false, Error: "checkpoint is locked"})
			})
			defer server.Close()

			result, err := DeleteCheckpoint("cp-1")

			So(err, ShouldBeNil)
			So(result.Success, ShouldBeFalse)
			So(result.Error, ShouldEqual, "checkpoint is locked")
		})

		Convey("SubmitQuizAnswer carries the selected answer", func(c C) {
			var got QuizSubmission
			server := withServer(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Path, ShouldEqual, "/checkpoints/cp-1/quiz-answers")
				c.So(json.NewDecoder(r.Body).Decode(&got), ShouldBeNil)
				json.NewEncoder(w).Encode(Result{Success: true})
			})
			defer server.Close()

			result, err := SubmitQuizAnswer(QuizSubmission{CheckpointID: "cp-1", Answer: "B", Correct: true})

			So(err, ShouldBeNil)
			So(result.Success, ShouldBeTrue)
			So(got.Answer, ShouldEqual, "B")
			So(got.Correct, ShouldBeTrue)
		})

		Convey("Mutations report transport failures as errors", func() {
			viper.Set(key.APIBaseURL, "http://127.0.0.1:1")

			_, err := SubmitReflection(ReflectionSubmission{CheckpointID: "cp-1", Text: "notes"})

			So(err, ShouldNotBeNil)
		})
	})
}
