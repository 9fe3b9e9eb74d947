package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/raspa/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CacheStaleHours, convey.ShouldEqual, 8)
				convey.So(cfg.RevealThresholdPct, convey.ShouldEqual, 40)
				convey.So(cfg.PushWorkerCount, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RASPA_ADDR", ":8080")
			_ = os.Setenv("RASPA_LEDGER_URL", "http://ledger.test/rows")
			_ = os.Setenv("RASPA_PUSH_QUEUE_SIZE", "64")
			_ = os.Setenv("RASPA_CACHE_STALE_HOURS", "4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LedgerURL, convey.ShouldEqual, "http://ledger.test/rows")
				convey.So(cfg.PushQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.CacheStaleHours, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
ledger_url: "http://sheet.test/api"
ledger_push_retries: 5
surface_width: 400
surface_height: 300
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RASPA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LedgerURL, convey.ShouldEqual, "http://sheet.test/api")
				convey.So(cfg.LedgerPushRetries, convey.ShouldEqual, 5)
				convey.So(cfg.SurfaceWidth, convey.ShouldEqual, 400)
				convey.So(cfg.SurfaceHeight, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When env overrides a file value", func() {
			yamlContent := `
addr: ":9090"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RASPA_CONFIG", tmpFile)
			_ = os.Setenv("RASPA_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When validation fails", func() {
			_ = os.Setenv("RASPA_CACHE_STALE_HOURS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"RASPA_CONFIG",
		"RASPA_ADDR",
		"RASPA_LEDGER_URL",
		"RASPA_PUSH_QUEUE_SIZE",
		"RASPA_CACHE_STALE_HOURS",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "raspa-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	_ = f.Close()
	return f.Name()
}
