package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	model "github.com/talenti/fitscore/internal/domain/model"
)

func TestTranscriptSegmentDecoding(t *testing.T) {
	convey.Convey("Given transcript JSON", t, func() {
		convey.Convey("When every segment has speaker and content", func() {
			var segs []model.TranscriptSegment
			err := json.Unmarshal([]byte(`[{"speaker":"candidate","content":"I owned it."},{"speaker":"interviewer","content":""}]`), &segs)

			convey.Convey("Then it decodes in order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(segs, convey.ShouldHaveLength, 2)
				convey.So(segs[0].Speaker, convey.ShouldEqual, "candidate")
				convey.So(segs[1].Content, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When a segment has a null content", func() {
			var segs []model.TranscriptSegment
			err := json.Unmarshal([]byte(`[{"speaker":"candidate","content":null}]`), &segs)

			convey.Convey("Then decoding fails with ErrSegment", func() {
				convey.So(errors.Is(err, model.ErrSegment), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a segment is missing its speaker", func() {
			var seg model.TranscriptSegment
			err := json.Unmarshal([]byte(`{"content":"hello"}`), &seg)

			convey.Convey("Then decoding fails with ErrSegment", func() {
				convey.So(errors.Is(err, model.ErrSegment), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a segment is not an object", func() {
			var seg model.TranscriptSegment
			err := json.Unmarshal([]byte(`"hello"`), &seg)

			convey.Convey("Then decoding fails with ErrSegment", func() {
				convey.So(errors.Is(err, model.ErrSegment), convey.ShouldBeTrue)
			})
		})
	})
}

func TestScoringRequestContext(t *testing.T) {
	convey.Convey("Given scoring requests with varying context", t, func() {
		env := model.OperatingEnvironment{"conflict_style": "direct"}
		tax := model.Taxonomy{"taxonomy_id": "t1"}

		convey.So((&model.ScoringRequest{}).HasExplicitContext(), convey.ShouldBeFalse)
		convey.So((&model.ScoringRequest{}).HasPartialContext(), convey.ShouldBeFalse)
		convey.So((&model.ScoringRequest{OperatingEnvironment: env}).HasPartialContext(), convey.ShouldBeTrue)
		convey.So((&model.ScoringRequest{Taxonomy: tax}).HasPartialContext(), convey.ShouldBeTrue)

		full := &model.ScoringRequest{OperatingEnvironment: env, Taxonomy: tax}
		convey.So(full.HasExplicitContext(), convey.ShouldBeTrue)
		convey.So(full.HasPartialContext(), convey.ShouldBeFalse)
	})
}

func TestTaxonomyDecoding(t *testing.T) {
	convey.Convey("Given a request whose taxonomy carries extra and non-numeric fields", t, func() {
		var req model.ScoringRequest
		err := json.Unmarshal([]byte(`{
			"transcript": [{"speaker":"candidate","content":"hi"}],
			"operating_environment": {"conflict_style":"direct"},
			"taxonomy": {"taxonomy_id": 7, "version": "1", "owner": "hr",
				"signals": [{"signal_id":"s","dimension":"d","score_map":{"strong":"3"},"weight":2}]}
		}`), &req)

		convey.Convey("Then it decodes and keeps every field", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(req.Taxonomy.ID(), convey.ShouldEqual, "7")
			convey.So(req.Taxonomy.Version(), convey.ShouldEqual, "1")
			convey.So(req.Taxonomy["owner"], convey.ShouldEqual, "hr")
			signals, ok := req.Taxonomy.Signals()
			convey.So(ok, convey.ShouldBeTrue)
			signal := signals[0].(map[string]any)
			convey.So(signal["score_map"], convey.ShouldResemble, map[string]any{"strong": "3"})
			convey.So(signal["weight"], convey.ShouldEqual, float64(2))
		})

		convey.Convey("Then it re-encodes unchanged", func() {
			out, merr := json.Marshal(req.Taxonomy)
			convey.So(merr, convey.ShouldBeNil)
			convey.So(string(out), convey.ShouldContainSubstring, `"owner":"hr"`)
			convey.So(string(out), convey.ShouldContainSubstring, `"weight":2`)
		})
	})

	convey.Convey("Given a taxonomy whose signals are not an array", t, func() {
		_, ok := model.Taxonomy{"signals": "s1"}.Signals()
		convey.So(ok, convey.ShouldBeFalse)
	})
}

func TestOperatingEnvironment(t *testing.T) {
	convey.Convey("Given an operating environment missing some categorical fields", t, func() {
		env := model.OperatingEnvironment{
			model.EnvControlVsAutonomy: "autonomy",
			model.EnvConflictStyle:     "direct",
			"custom_key":               true,
		}

		convey.Convey("Then MissingFields lists the rest in order", func() {
			convey.So(env.MissingFields(), convey.ShouldResemble, []string{
				model.EnvOutcomeVsProcess,
				model.EnvDecisionReality,
				model.EnvAmbiguityLoad,
				model.EnvHighPerformanceArchetype,
			})
		})

		convey.Convey("Then unknown keys survive a JSON round trip", func() {
			b, err := json.Marshal(env)
			convey.So(err, convey.ShouldBeNil)
			var back model.OperatingEnvironment
			convey.So(json.Unmarshal(b, &back), convey.ShouldBeNil)
			convey.So(back["custom_key"], convey.ShouldEqual, true)
		})
	})
}

func TestScoringResponseEncoding(t *testing.T) {
	convey.Convey("Given a response with a null rationale", t, func() {
		resp := model.ScoringResponse{
			InterviewID:  "iv-1",
			OverallScore: 50,
			Dimensions:   []model.ScoringDimension{{Name: "clarity", Score: 50}},
			Summary:      model.DefaultSummary,
		}
		b, err := json.Marshal(resp)

		convey.Convey("Then rationale is emitted as null", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldContainSubstring, `"rationale":null`)
			convey.So(string(b), convey.ShouldContainSubstring, `"overall_score":50`)
		})
	})
}
