package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/starry-os/starry-test-harness/internal/result"
)

const metricsNamespace = "starry"

var allStatuses = []result.Status{result.StatusPass, result.StatusFail, result.StatusSkip, result.StatusError}

// WriteMetrics writes r to path in the Prometheus textfile format, for
// pickup by a node exporter textfile collector on the CI host.
func WriteMetrics(path string, r *SuiteReport) error {
	reg := prometheus.NewRegistry()

	testCount := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "tests",
		Help:      "Number of tests in the last run, by status",
	}, []string{"suite", "status"})

	testDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "test_duration_seconds",
		Help:      "Wall-clock duration of each test in the last run",
	}, []string{"suite", "test"})

	testStatus := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "test_status",
		Help:      "1 for the status each test ended in, 0 otherwise",
	}, []string{"suite", "test", "status"})

	suiteSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "suite_success",
		Help:        "1 if no test failed in the last run",
		ConstLabels: prometheus.Labels{"suite": r.Suite, "run_id": r.RunID},
	})

	reg.MustRegister(testCount, testDuration, testStatus, suiteSuccess)

	byStatus := map[result.Status]int{}
	for _, res := range r.Results {
		byStatus[res.Status]++
		testDuration.WithLabelValues(r.Suite, res.Name).Set(res.Duration.Seconds())
		for _, s := range allStatuses {
			v := 0.0
			if res.Status == s {
				v = 1
			}
			testStatus.WithLabelValues(r.Suite, res.Name, string(s)).Set(v)
		}
	}
	for _, s := range allStatuses {
		testCount.WithLabelValues(r.Suite, string(s)).Set(float64(byStatus[s]))
	}
	if r.Success() {
		suiteSuccess.Set(1)
	}

	return prometheus.WriteToTextfile(path, reg)
}
