// Package report accumulates test results into a suite report and renders it.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/manifest"
	"github.com/starry-os/starry-test-harness/internal/result"
)

// SuiteReport is the outcome of one suite run.
type SuiteReport struct {
	Suite       string
	Description string
	RunID       string

	Total   int
	Passed  int
	Failed  int // includes StatusError results
	Skipped int

	Results  []result.ExecutionResult
	Started  time.Time
	Finished time.Time
}

// Success reports whether no test failed. Skips do not count.
func (r *SuiteReport) Success() bool {
	return r.Failed == 0
}

// Duration returns the wall-clock time of the run.
func (r *SuiteReport) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Aggregator is the single writer of a SuiteReport.
type Aggregator struct {
	report *SuiteReport
	now    func() time.Time
}

// NewAggregator starts a report for suite.
func NewAggregator(suite *manifest.Suite) *Aggregator {
	a := &Aggregator{now: time.Now}
	a.report = &SuiteReport{
		Suite:       suite.Name,
		Description: suite.Description,
		RunID:       uuid.New().String(),
		Results:     make([]result.ExecutionResult, 0, len(suite.Tests)),
		Started:     a.now(),
	}
	return a
}

// Add records one result.
func (a *Aggregator) Add(r result.ExecutionResult) {
	rep := a.report
	rep.Total++
	switch {
	case r.Status == result.StatusPass:
		rep.Passed++
	case r.Status == result.StatusSkip:
		rep.Skipped++
	case r.Status.IsFailure():
		rep.Failed++
	default:
		// Unrecognized statuses cannot pass a suite.
		rep.Failed++
	}
	rep.Results = append(rep.Results, r)
}

// Report returns the report accumulated so far.
func (a *Aggregator) Report() *SuiteReport {
	return a.report
}

// Finish stamps the end time and returns the final report.
func (a *Aggregator) Finish() *SuiteReport {
	a.report.Finished = a.now()
	return a.report
}

// ExitCode is ExitSuccess iff no test failed.
func (a *Aggregator) ExitCode() int {
	if a.report.Success() {
		return errors.ExitSuccess
	}
	return errors.ExitFailure
}
