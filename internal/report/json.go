package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/starry-os/starry-test-harness/internal/result"
)

// JSONFormatter writes a single JSON document when the suite finishes.
type JSONFormatter struct {
	w io.Writer
}

type jsonCounts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

type jsonResult struct {
	Name     string      `json:"name"`
	Type     string      `json:"type,omitempty"`
	Status   string      `json:"status"`
	Duration float64     `json:"duration_seconds"`
	Output   string      `json:"output,omitempty"`
	Subtests *jsonCounts `json:"subtests,omitempty"`
}

type jsonReport struct {
	RunID       string       `json:"run_id"`
	Suite       string       `json:"suite"`
	Description string       `json:"description,omitempty"`
	Started     time.Time    `json:"started"`
	Finished    time.Time    `json:"finished"`
	Duration    float64      `json:"duration_seconds"`
	Total       int          `json:"total"`
	Passed      int          `json:"passed"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	Success     bool         `json:"success"`
	Results     []jsonResult `json:"results"`
}

func (f *JSONFormatter) Start(*SuiteReport) {}

func (f *JSONFormatter) Result(int, result.ExecutionResult) {}

func (f *JSONFormatter) Finish(r *SuiteReport) error {
	doc := jsonReport{
		RunID:       r.RunID,
		Suite:       r.Suite,
		Description: r.Description,
		Started:     r.Started,
		Finished:    r.Finished,
		Duration:    r.Duration().Seconds(),
		Total:       r.Total,
		Passed:      r.Passed,
		Failed:      r.Failed,
		Skipped:     r.Skipped,
		Success:     r.Success(),
		Results:     make([]jsonResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		jr := jsonResult{
			Name:     res.Name,
			Type:     res.Type,
			Status:   string(res.Status),
			Duration: res.Duration.Seconds(),
			Output:   plainOutput(res.Output),
		}
		if c := res.Counts; c != nil {
			jr.Subtests = &jsonCounts{Passed: c.Passed, Failed: c.Failed, Skipped: c.Skipped, Total: c.Total}
		}
		doc.Results = append(doc.Results, jr)
	}

	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
