package config

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaults(t *testing.T) {
	Convey("Given no config file and no environment overrides", t, func() {
		os.Unsetenv("SEARCH_THREADS")
		os.Unsetenv("SEARCH_ITERATIONS")

		Convey("Load returns the built-in defaults", func() {
			cfg, err := Load("")
			So(err, ShouldBeNil)
			So(cfg.Threads, ShouldEqual, defaultThreads)
			So(cfg.Iterations, ShouldEqual, defaultIterations)
		})
	})
}

func TestLoadEnvOverride(t *testing.T) {
	Convey("Given SEARCH_THREADS set in the environment", t, func() {
		os.Setenv("SEARCH_THREADS", "8")
		defer os.Unsetenv("SEARCH_THREADS")

		Convey("Load picks up the override", func() {
			cfg, err := Load("")
			So(err, ShouldBeNil)
			So(cfg.Threads, ShouldEqual, 8)
		})
	})
}

func TestLoadRejectsInvalidThreads(t *testing.T) {
	Convey("Given a zero thread count", t, func() {
		os.Setenv("SEARCH_THREADS", "0")
		defer os.Unsetenv("SEARCH_THREADS")

		Convey("Load reports an error", func() {
			_, err := Load("")
			So(err, ShouldNotBeNil)
		})
	})
}
