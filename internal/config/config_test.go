package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/talenti/fitscore/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.PredictMaxRetries, convey.ShouldEqual, 3)
			convey.So(cfg.PredictTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.PredictBackoffBase(), convey.ShouldEqual, time.Second)
			convey.So(cfg.HealthTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 3*time.Minute)
			convey.So(cfg.PredictRateLimit, convey.ShouldEqual, 0)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
