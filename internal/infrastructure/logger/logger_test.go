package logger

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	Convey("Given verbosity deltas from the command line", t, func() {
		Convey("No flags mean Info", func() {
			So(Level(0), ShouldEqual, zapcore.InfoLevel)
		})

		Convey("Each -v lowers toward Debug", func() {
			So(Level(1), ShouldEqual, zapcore.DebugLevel)
			So(Level(3), ShouldEqual, zapcore.DebugLevel)
		})

		Convey("Each -q raises toward Error", func() {
			So(Level(-1), ShouldEqual, zapcore.WarnLevel)
			So(Level(-2), ShouldEqual, zapcore.ErrorLevel)
			So(Level(-5), ShouldEqual, zapcore.ErrorLevel)
		})
	})
}

func TestLogger(t *testing.T) {
	Convey("Given the Logger package", t, func() {
		Convey("When creating a logger with console output only", func() {
			logger, err := New(0, "")

			Convey("It should create a logger successfully", func() {
				So(err, ShouldBeNil)
				So(logger, ShouldNotBeNil)
				So(func() { logger.Info("Test log") }, ShouldNotPanic)
			})
		})

		Convey("When creating a logger with a valid log file", func() {
			tempDir, err := os.MkdirTemp("", "logger_test")
			So(err, ShouldBeNil)
			defer os.RemoveAll(tempDir)

			logFile := filepath.Join(tempDir, "test.log")

			logger, err := New(1, logFile)

			Convey("It should create a logger and log file successfully", func() {
				So(err, ShouldBeNil)
				So(logger, ShouldNotBeNil)

				logger.Debug("Test debug log")
				logger.Sync()

				_, err := os.Stat(logFile)
				So(err, ShouldBeNil)

				logger.Close()
			})
		})

		Convey("When creating a logger with an invalid log file path", func() {
			logFile := "/proc/invalid/path/test.log"

			logger, err := New(0, logFile)

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to create log directory")
				So(logger, ShouldBeNil)
			})
		})

		Convey("When closing a logger with console output only", func() {
			logger, err := New(0, "")
			So(err, ShouldBeNil)

			Convey("It should close without error", func() {
				So(func() { logger.Close() }, ShouldNotPanic)
			})
		})
	})
}
