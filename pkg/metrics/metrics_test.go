package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording scoring metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordScoreComputed()
					RecordRecomputeLatency(12.5)
					RecordRecomputeError()
					RecordNeutralFallback("temporal_fit")
				}, ShouldNotPanic)
			})
		})

		Convey("When updating score cache gauges", func() {
			Convey("Then it should update without panicking", func() {
				So(func() {
					UpdateTotalScores(42)
					UpdateStaleScores(7)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					UpdateQueuePending(3)
					RecordQueueEnqueue()
					RecordQueueEnqueueError()
					RecordQueueProcessed()
					RecordQueueFailed()
					RecordQueueRetry()
					RecordQueueReclaims(2)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording worker and HTTP metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					UpdateWorkerActiveCount(4)
					RecordHTTPRequest("/api/v1/stats", "GET", "200")
					RecordHTTPRequestDuration("/api/v1/stats", "GET", "200", 3.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When updating system metrics", func() {
			Convey("Then it should update without panicking", func() {
				So(func() {
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(17)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When fetching it", func() {
			registry := GetRegistry()

			Convey("Then it should gather our metric families", func() {
				So(registry, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
