package config_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/campuslink/matchengine/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.QueueCapacity, convey.ShouldEqual, 100_000)
			convey.So(cfg.MaxAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.Lease, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.ScoreTTL, convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.TTLSweepInterval, convey.ShouldEqual, time.Minute)
			convey.So(cfg.WeeklyCapacityHours, convey.ShouldEqual, 40)
			convey.So(cfg.AvailabilityLowHours, convey.ShouldEqual, 10)
			convey.So(cfg.AvailabilityMediumHours, convey.ShouldEqual, 30)
			convey.So(cfg.SeedDemo, convey.ShouldBeFalse)
		})

		convey.Convey("Then the default weight profile should be valid", func() {
			convey.So(cfg.Weights.Validate(), convey.ShouldBeNil)
			convey.So(cfg.Weights.Sum(), convey.ShouldAlmostEqual, 1.0)
		})
	})
}
