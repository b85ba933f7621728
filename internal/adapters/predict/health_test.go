package predict_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/talenti/fitscore/internal/adapters/predict"
)

func TestHealth(t *testing.T) {
	Convey("Given a healthy and an unhealthy service", t, func() {
		var paths []string
		up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer up.Close()
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer down.Close()

		Convey("Only a 200 counts as healthy", func() {
			c := predict.New(up.URL, down.URL)
			defer c.Close()

			h := c.Health(context.Background())
			So(h.Culture, ShouldBeTrue)
			So(h.Transcript, ShouldBeFalse)
			So(paths, ShouldResemble, []string{"/health"})
		})

		Convey("Unconfigured or unreachable services are unhealthy", func() {
			gone := httptest.NewServer(http.NotFoundHandler())
			goneURL := gone.URL
			gone.Close()

			c := predict.New("", goneURL, predict.WithHealthTimeout(time.Second))
			defer c.Close()

			h := c.Health(context.Background())
			So(h.Culture, ShouldBeFalse)
			So(h.Transcript, ShouldBeFalse)
		})
	})
}
