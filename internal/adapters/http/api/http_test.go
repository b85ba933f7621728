package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/talenti/fitscore/internal/adapters/http/api"
	"github.com/talenti/fitscore/internal/adapters/predict"
	service "github.com/talenti/fitscore/internal/app"
	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/kind"
	"github.com/talenti/fitscore/pkg/logger"
)

type mockDependencies struct {
	resp      *model.ScoringResponse
	err       error
	health    predict.Health
	got       *model.ScoringRequest
	requestID string
}

func (m *mockDependencies) Score(ctx context.Context, req *model.ScoringRequest) (*model.ScoringResponse, error) {
	m.got = req
	m.requestID = logger.RequestID(ctx)
	return m.resp, m.err
}

func (m *mockDependencies) Health(context.Context) predict.Health {
	return m.health
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, api.WithMaxBodyBytes(1<<16)).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

const validBody = `{
	"interview_id": "iv-1",
	"transcript": [{"speaker": "candidate", "content": "I owned the migration."}],
	"rubric": {"ownership": 0.7, "clarity": "0.3"},
	"org_id": "org-1",
	"trace": false
}`

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then the metrics endpoint should be accessible", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then unknown routes are not found", func() {
			w := do(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a nil mux panics", func() {
			So(func() { api.NewServer(&mockDependencies{}).Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestScoringHandler(t *testing.T) {
	Convey("Given a scoring handler", t, func() {
		rationale := "Culture fit model score."
		deps := &mockDependencies{resp: &model.ScoringResponse{
			InterviewID:  "iv-1",
			OverallScore: 71,
			Dimensions:   []model.ScoringDimension{{Name: "ownership", Score: 80, Rationale: &rationale}, {Name: "clarity", Score: 50}},
			Summary:      model.DefaultSummary,
		}}
		mux := newMux(deps)

		Convey("When posting a valid request", func() {
			w := do(mux, http.MethodPost, api.RouteScoringAnalyze, validBody)

			Convey("Then it returns the scoring response", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")

				var got map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got["overall_score"], ShouldEqual, float64(71))
				dims := got["dimensions"].([]any)
				So(dims, ShouldHaveLength, 2)
				So(dims[1].(map[string]any), ShouldContainKey, "rationale")
				So(dims[1].(map[string]any)["rationale"], ShouldBeNil)
			})

			Convey("Then the request is decoded as sent", func() {
				So(deps.got.InterviewID, ShouldEqual, "iv-1")
				So(deps.got.Transcript, ShouldHaveLength, 1)
				So(deps.got.Rubric["clarity"], ShouldEqual, "0.3")
				So(deps.got.Trace, ShouldNotBeNil)
				So(*deps.got.Trace, ShouldBeFalse)
			})

			Convey("Then a request id is assigned and propagated", func() {
				id := w.Header().Get(api.HeaderRequestID)
				So(id, ShouldNotBeEmpty)
				So(deps.requestID, ShouldEqual, id)
			})
		})

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodPost, api.RouteScoringAnalyze, strings.NewReader(validBody))
			req.Header.Set(api.HeaderRequestID, "caller-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "caller-123")
			So(deps.requestID, ShouldEqual, "caller-123")
		})

		Convey("When the body is malformed", func() {
			bodies := []string{
				``,
				`{"transcript":`,
				`{"transcript":[{"speaker":"c"}]}`,
				`{"transcript":[{"speaker":null,"content":"x"}]}`,
				`{"transcript":[{"speaker":"c","content":"x"}],"rubric":[1]}`,
			}
			for _, body := range bodies {
				w := do(mux, http.MethodPost, api.RouteScoringAnalyze, body)
				var eb errorBody
				So(json.Unmarshal(w.Body.Bytes(), &eb), ShouldBeNil)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(eb.Code, ShouldEqual, service.CodeInvalidInput)
				So(eb.Message, ShouldNotBeEmpty)
			}
			So(deps.got, ShouldBeNil)
		})

		Convey("When the body is too large", func() {
			big := `{"transcript":[{"speaker":"c","content":"` + strings.Repeat("x", 1<<17) + `"}]}`
			w := do(mux, http.MethodPost, api.RouteScoringAnalyze, big)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, api.ErrBodySize.Error())
		})

		Convey("When the method is not POST", func() {
			w := do(mux, http.MethodGet, api.RouteScoringAnalyze, "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScoringHandlerErrors(t *testing.T) {
	Convey("Given scoring failures of each kind", t, func() {
		cases := []struct {
			kind   error
			status int
			code   string
		}{
			{service.ErrInvalidInput, http.StatusBadRequest, service.CodeInvalidInput},
			{service.ErrContext, http.StatusBadRequest, service.CodeContext},
			{service.ErrUpstream, http.StatusBadGateway, service.CodeUpstream},
			{service.ErrNoScores, http.StatusBadGateway, service.CodeNoScores},
			{service.ErrInternal, http.StatusInternalServerError, service.CodeInternal},
		}
		for _, tc := range cases {
			deps := &mockDependencies{err: kind.Wrap("service.score", tc.kind, errors.New("cause"))}
			w := do(newMux(deps), http.MethodPost, api.RouteScoringAnalyze, validBody)

			var eb errorBody
			So(json.Unmarshal(w.Body.Bytes(), &eb), ShouldBeNil)
			So(w.Code, ShouldEqual, tc.status)
			So(eb.Code, ShouldEqual, tc.code)
		}
	})
}

func TestPredictorHealthHandler(t *testing.T) {
	Convey("Given one healthy prediction service", t, func() {
		mux := newMux(&mockDependencies{health: predict.Health{Culture: true}})

		Convey("Then health answers 200 with per-service flags", func() {
			w := do(mux, http.MethodGet, api.RouteScoringHealth, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "{\"model_service_1\":true,\"model_service_2\":false}\n")
		})

		Convey("Then non-GET methods are not found", func() {
			w := do(mux, http.MethodPost, api.RouteScoringHealth, "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
