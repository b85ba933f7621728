package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the default options", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { _ = Sync() }()

		Convey("Then the global logger is available", func() {
			So(Get(), ShouldNotBeNil)
			So(Named("test"), ShouldNotBeNil)
		})
	})

	Convey("Given an unknown format", t, func() {
		err := Init(WithFormat("xml"))

		Convey("Then Init fails", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "xml")
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)

		Convey("When logging with a request id in the context", func() {
			ctx := WithRequestID(context.Background(), "req-123")
			Named("scoring").Info(ctx, "scored", String("interview_id", "iv-1"), Int("overall", 71))

			var line map[string]any
			So(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), ShouldBeNil)

			Convey("Then fields, logger name, and request id are emitted", func() {
				So(line["msg"], ShouldEqual, "scored")
				So(line["interview_id"], ShouldEqual, "iv-1")
				So(line["overall"], ShouldEqual, float64(71))
				So(line["logger"], ShouldEqual, "scoring")
				So(line["request_id"], ShouldEqual, "req-123")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Debug(context.Background(), "hidden")
			Get().Info(context.Background(), "hidden too")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given supported level names", t, func() {
		So(Init(WithOutput(&bytes.Buffer{})), ShouldBeNil)
		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}

		Convey("Then an unknown level is rejected", func() {
			err := SetLevelString("verbose")
			So(err, ShouldNotBeNil)
			So(strings.Contains(err.Error(), "verbose"), ShouldBeTrue)
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given contexts with and without a request id", t, func() {
		So(RequestID(context.Background()), ShouldEqual, "")
		So(RequestID(WithRequestID(context.Background(), "")), ShouldEqual, "")
		So(RequestID(WithRequestID(context.Background(), "abc")), ShouldEqual, "abc")
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() { l.Error(context.Background(), "discarded", Error(nil)) }, ShouldNotPanic)
	})
}
