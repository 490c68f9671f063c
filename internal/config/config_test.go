package config_test

import (
	"testing"
	"time"

	"github.com/mergington/signup/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.UpstreamURL, convey.ShouldEqual, "http://localhost:8000")
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.BannerTTL(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.CommandQueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.SecureCookies, convey.ShouldBeFalse)
		})
	})
}
