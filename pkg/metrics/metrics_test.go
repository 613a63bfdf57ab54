package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the clue namespace", func() {
				So(manager.namespace, ShouldEqual, "clue")
				So(manager.subsystem, ShouldEqual, "api")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("proxy"),
				WithHistogramBuckets([]float64{1, 2}),
				WithUpstreamBuckets([]float64{10, 20}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.storeConnected.Set(1)

			Convey("Then metric names and labels should reflect them", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_proxy_store_connected" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(WithNamespace(""), WithHistogramBuckets(nil), WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "clue")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording upstream calls", func() {
			before := testutil.ToFloat64(globalManager.upstreamRequests.WithLabelValues("port4", "keyword-why", OutcomeOK))
			RecordUpstreamRequest("port4", "keyword-why", OutcomeOK, 1200)
			AddUpstreamInFlight("port4", 1)
			AddUpstreamInFlight("port4", -1)

			Convey("Then the counter should grow and in-flight should settle", func() {
				after := testutil.ToFloat64(globalManager.upstreamRequests.WithLabelValues("port4", "keyword-why", OutcomeOK))
				So(after-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.upstreamInFlight.WithLabelValues("port4")), ShouldEqual, 0)
			})
		})

		Convey("When recording a failed store query", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("products"))
			RecordStoreQuery("products", "find", 3, errors.New("boom"))
			RecordStoreQuery("products", "find", 2, nil)

			Convey("Then only the failure should be counted", func() {
				So(testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("products"))-before, ShouldEqual, 1)
			})
		})

		Convey("When toggling the connection gauge", func() {
			SetStoreConnected(true)
			So(testutil.ToFloat64(globalManager.storeConnected), ShouldEqual, 1)
			SetStoreConnected(false)
			So(testutil.ToFloat64(globalManager.storeConnected), ShouldEqual, 0)
		})

		Convey("When recording the remaining series", func() {
			So(func() {
				RecordHTTPRequest("/api/health", "GET", "200")
				RecordHTTPRequestDuration("/api/health", "GET", "200", 1.5)
				RecordCacheResult(CacheHit)
				RecordErrorByType("upstream_error", "high")
				RecordErrorByEndpoint("/api/llm/keyword-why", "POST", "upstream_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.2)
				UpdateServiceUptime(12)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
