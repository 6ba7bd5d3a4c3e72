package dynamics

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given fresh metrics", t, func() {
		m := NewMetrics()

		Convey("It should count successes, failures and shots", func() {
			start := time.Now().Add(-10 * time.Millisecond)
			m.recordExperiment(start, &ExperimentResult{Success: true, Shots: 100}, 12)
			m.recordExperiment(start, &ExperimentResult{Success: false, Shots: 100}, 3)

			exported := m.ExportMetrics()
			So(exported["experiments"], ShouldEqual, int64(2))
			So(exported["failed_experiments"], ShouldEqual, int64(1))
			So(exported["shots_sampled"], ShouldEqual, int64(100))
			So(exported["integration_steps"], ShouldEqual, int64(15))
			So(exported["success_rate"], ShouldEqual, 0.5)
			So(exported["p99_latency"], ShouldBeGreaterThanOrEqualTo, exported["p95_latency"])
			So(exported["avg_latency"], ShouldBeGreaterThanOrEqualTo, int64(10))
			So(exported["last_experiment"], ShouldEqual, start)
		})

		Convey("It should keep a bounded latency window", func() {
			m.windowSize = 5
			for i := 0; i < 20; i++ {
				m.recordExperiment(time.Now(), &ExperimentResult{Success: true}, 1)
			}
			So(m.latencyWindows, ShouldHaveLength, 5)
			So(m.ExportMetrics()["experiments"], ShouldEqual, int64(20))
		})
	})
}
