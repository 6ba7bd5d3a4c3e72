package dynamics

import (
	"sort"
	"sync"
	"time"
)

type timeWindow struct {
	duration time.Duration
	count    int
}

/*
Metrics tracks the experiments a backend has simulated. Read it through ExportMetrics,
which takes a consistent snapshot.
*/
type Metrics struct {
	mu sync.RWMutex

	experimentCount    int64
	failedExperiments  int64
	shotsSampled       int64
	totalSolveTime     time.Duration
	integrationSteps   int64
	averageSolveTime   time.Duration
	p95SolveTime       time.Duration
	p99SolveTime       time.Duration
	experimentSuccess  float64
	lastExperimentTime time.Time

	latencyWindows []timeWindow
	windowSize     int
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencyWindows: make([]timeWindow, 0, 1000),
		windowSize:     1000,
	}
}

func (m *Metrics) recordExperiment(startTime time.Time, result *ExperimentResult, steps int) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.experimentCount++
	m.totalSolveTime += duration
	m.integrationSteps += int64(steps)
	m.lastExperimentTime = startTime

	if result == nil || !result.Success {
		m.failedExperiments++
	} else {
		m.shotsSampled += int64(result.Shots)
	}

	m.experimentSuccess = float64(m.experimentCount-m.failedExperiments) / float64(m.experimentCount)
	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.averageSolveTime = m.totalSolveTime / time.Duration(m.experimentCount)

	m.latencyWindows = append(m.latencyWindows, timeWindow{
		duration: duration,
		count:    1,
	})

	if len(m.latencyWindows) > m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}

	sorted := make([]time.Duration, 0, len(m.latencyWindows))
	for _, w := range m.latencyWindows {
		for i := 0; i < w.count; i++ {
			sorted = append(sorted, w.duration)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	if len(sorted) > 0 {
		p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
		p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

		m.p95SolveTime = sorted[p95Index]
		m.p99SolveTime = sorted[p99Index]
	}
}

func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"experiments":        m.experimentCount,
		"failed_experiments": m.failedExperiments,
		"shots_sampled":      m.shotsSampled,
		"integration_steps":  m.integrationSteps,
		"success_rate":       m.experimentSuccess,
		"avg_latency":        m.averageSolveTime.Milliseconds(),
		"p95_latency":        m.p95SolveTime.Milliseconds(),
		"p99_latency":        m.p99SolveTime.Milliseconds(),
		"last_experiment":    m.lastExperimentTime,
	}
}
