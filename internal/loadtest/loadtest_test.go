package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func ptr(s string) *string { return &s }

// fakeServer answers /healthz and the analyze route. shape rewrites each
// reply before it is sent; call is the 1-based analyze call number.
func fakeServer(shape func(call int32, resp *model.ScoringResponse) int) (*httptest.Server, *atomic.Int32) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(healthzPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(analyzePath, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		var req model.ScoringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := model.ScoringResponse{
			InterviewID:  req.InterviewID,
			OverallScore: 10 * len(req.Transcript),
			Dimensions: []model.ScoringDimension{
				{Name: "clarity", Score: 60, Rationale: ptr("Transcript model: clear.")},
				{Name: "ownership", Score: 80, Rationale: nil},
			},
			Summary: model.DefaultSummary,
		}
		status := http.StatusOK
		if shape != nil {
			status = shape(n, &resp)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		_, _ = w.Write([]byte(`{"code":"upstream_error","message":"prediction services unavailable"}`))
	})
	return httptest.NewServer(mux), &calls
}

func baseConfig(url string) *Config {
	return &Config{BaseURL: url, Requests: 12, Workers: 4, Timeout: 5 * time.Second, Seed: 7}
}

func TestGenerateRequests(t *testing.T) {
	convey.Convey("Given a seeded generator", t, func() {
		cfg := &Config{Requests: 5, Seed: 42}

		convey.Convey("When it runs twice with the same seed", func() {
			a := generateRequests(context.Background(), cfg, &Stats{})
			b := generateRequests(context.Background(), cfg, &Stats{})

			convey.Convey("Then the requests are identical and carry inline context", func() {
				convey.So(a, convey.ShouldResemble, b)
				for _, r := range a {
					convey.So(len(r.Transcript), convey.ShouldBeGreaterThanOrEqualTo, 2)
					convey.So(r.HasExplicitContext(), convey.ShouldBeTrue)
					convey.So(r.OrgID, convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When an organisation is configured", func() {
			cfg.OrgID = "org-1"
			stats := &Stats{}
			reqs := generateRequests(context.Background(), cfg, stats)

			convey.Convey("Then context is left to the server", func() {
				convey.So(stats.Generated, convey.ShouldEqual, 5)
				for _, r := range reqs {
					convey.So(r.OrgID, convey.ShouldEqual, "org-1")
					convey.So(r.OperatingEnvironment, convey.ShouldBeNil)
					convey.So(r.Taxonomy, convey.ShouldBeNil)
				}
			})
		})
	})
}

func TestVerifyResponse(t *testing.T) {
	convey.Convey("Given a request and its reply", t, func() {
		req := &model.ScoringRequest{InterviewID: "iv-1"}
		resp := &model.ScoringResponse{
			InterviewID:  "iv-1",
			OverallScore: 71,
			Dimensions:   []model.ScoringDimension{{Name: "clarity", Score: 60}, {Name: "ownership", Score: 80}},
			Summary:      "ok",
		}

		convey.So(verifyResponse(req, resp), convey.ShouldBeNil)

		convey.Convey("Then a mismatched interview id is reported", func() {
			resp.InterviewID = "iv-2"
			convey.So(verifyResponse(req, resp), convey.ShouldNotBeNil)
		})
		convey.Convey("Then an out of range score is reported", func() {
			resp.Dimensions[1].Score = 101
			convey.So(verifyResponse(req, resp), convey.ShouldNotBeNil)
		})
		convey.Convey("Then unsorted dimensions are reported", func() {
			resp.Dimensions[0].Name, resp.Dimensions[1].Name = "ownership", "clarity"
			convey.So(verifyResponse(req, resp), convey.ShouldNotBeNil)
		})
		convey.Convey("Then duplicate dimensions are reported", func() {
			resp.Dimensions[1].Name = "clarity"
			convey.So(verifyResponse(req, resp), convey.ShouldNotBeNil)
		})
		convey.Convey("Then an empty summary is reported", func() {
			resp.Summary = ""
			convey.So(verifyResponse(req, resp), convey.ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a well behaved server", t, func() {
		srv, calls := fakeServer(nil)
		defer srv.Close()
		cfg := baseConfig(srv.URL)
		cfg.Repeat = 3
		cfg.OutputFile = filepath.Join(t.TempDir(), "out", "requests.json")

		stats, err := Run(context.Background(), cfg)

		convey.Convey("Then every request succeeds and repeats agree", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.Submitted, convey.ShouldEqual, 12)
			convey.So(stats.Successful, convey.ShouldEqual, 12)
			convey.So(stats.OK(), convey.ShouldBeTrue)
			convey.So(calls.Load(), convey.ShouldEqual, int32(15))
		})

		convey.Convey("Then the generated requests are saved", func() {
			raw, rerr := os.ReadFile(cfg.OutputFile)
			convey.So(rerr, convey.ShouldBeNil)
			var saved []model.ScoringRequest
			convey.So(json.Unmarshal(raw, &saved), convey.ShouldBeNil)
			convey.So(saved, convey.ShouldHaveLength, 12)
		})
	})

	convey.Convey("Given a server that sometimes fails upstream", t, func() {
		srv, _ := fakeServer(func(call int32, _ *model.ScoringResponse) int {
			if call%4 == 0 {
				return http.StatusBadGateway
			}
			return http.StatusOK
		})
		defer srv.Close()

		stats, err := Run(context.Background(), baseConfig(srv.URL))

		convey.Convey("Then failures are counted but the run passes", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.Failed, convey.ShouldEqual, 3)
			convey.So(stats.Successful, convey.ShouldEqual, 9)
		})
	})

	convey.Convey("Given a server returning unsorted dimensions", t, func() {
		srv, _ := fakeServer(func(_ int32, resp *model.ScoringResponse) int {
			resp.Dimensions[0], resp.Dimensions[1] = resp.Dimensions[1], resp.Dimensions[0]
			return http.StatusOK
		})
		defer srv.Close()

		stats, err := Run(context.Background(), baseConfig(srv.URL))

		convey.Convey("Then every reply is a violation", func() {
			convey.So(errors.Is(err, ErrContract), convey.ShouldBeTrue)
			convey.So(stats.Violations, convey.ShouldEqual, 12)
		})
	})

	convey.Convey("Given a server whose scores drift between calls", t, func() {
		srv, _ := fakeServer(func(call int32, resp *model.ScoringResponse) int {
			resp.OverallScore = int(call)
			return http.StatusOK
		})
		defer srv.Close()
		cfg := baseConfig(srv.URL)
		cfg.Repeat = 2

		stats, err := Run(context.Background(), cfg)

		convey.Convey("Then the repeat check flags it", func() {
			convey.So(errors.Is(err, ErrContract), convey.ShouldBeTrue)
			convey.So(stats.Inconsistent, convey.ShouldEqual, 2)
		})
	})

	convey.Convey("Given no server", t, func() {
		srv, _ := fakeServer(nil)
		url := srv.URL
		srv.Close()

		stats, err := Run(context.Background(), baseConfig(url))

		convey.Convey("Then the health check fails before anything is sent", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(stats.Submitted, convey.ShouldEqual, 0)
		})
	})
}
