package config_test

import (
	"testing"

	"github.com/okian/raspa/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LedgerTimeoutMS, convey.ShouldEqual, 5_000)
			convey.So(cfg.LedgerPushRetries, convey.ShouldEqual, 3)
			convey.So(cfg.PushQueueSize, convey.ShouldEqual, 1_024)
			convey.So(cfg.CacheStaleHours, convey.ShouldEqual, 8)
			convey.So(cfg.ScratchRadius, convey.ShouldEqual, 20)
			convey.So(cfg.RevealThresholdPct, convey.ShouldEqual, 40)
			convey.So(cfg.PrizeCatalog, convey.ShouldResemble, []int{38, 58, 88})
			convey.So(cfg.DefaultPrize, convey.ShouldEqual, 38)
		})
	})
}
