package remote

import (
	"context"
	"log/slog"
	"time"

	"github.com/starry-os/starry-test-harness/internal/classify"
	"github.com/starry-os/starry-test-harness/internal/result"
)

// Runner runs checks one at a time against a target.
type Runner struct {
	target Target
	logger *slog.Logger
	base   *classify.Classifier
}

// NewRunner creates a runner. A nil logger uses slog.Default().
func NewRunner(target Target, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{target: target, logger: logger, base: classify.Default()}
}

// Run runs checks in order and returns one result per check run. onResult,
// if non-nil, sees each result as soon as it is known. Once ctx is cancelled
// the remaining checks are not started.
func (r *Runner) Run(ctx context.Context, checks []Check, onResult func(i int, res result.ExecutionResult)) []result.ExecutionResult {
	results := make([]result.ExecutionResult, 0, len(checks))
	for i, c := range checks {
		res := r.RunCheck(ctx, c)
		results = append(results, res)
		if onResult != nil {
			onResult(i, res)
		}
		if ctx.Err() != nil {
			r.logger.Warn("interrupted, skipping remaining checks", "remaining", len(checks)-i-1)
			break
		}
	}
	return results
}

// RunCheck probes the check's requirement, runs it and classifies the outcome.
func (r *Runner) RunCheck(ctx context.Context, c Check) result.ExecutionResult {
	if c.Requires != "" {
		status, output := r.target.Run(ctx, c.Requires, probeTimeout)
		switch v := r.base.Classify(status, output); v.Kind {
		case classify.KindCrash:
			r.logger.Error("target crashed during probe", "check", c.Name, "command", c.Requires, "status", status, "output", output)
			return r.finish(result.Fail(c.Name, v.Reason, 0))
		case classify.KindTransportUnavailable:
			r.logger.Warn("target unreachable during probe", "check", c.Name, "output", output)
			return r.finish(result.Skip(c.Name, v.Reason))
		}
		if status != 0 {
			r.logger.Info("skipping check, requirement not met", "check", c.Name, "command", c.Requires, "status", status, "output", output)
			return r.finish(result.Skip(c.Name, "requirement not met: "+c.Requires))
		}
	}

	r.logger.Info("running check", "check", c.Name, "command", c.Command, "timeout", c.Timeout)
	start := time.Now()
	status, output := r.target.Run(ctx, c.Command, c.Timeout)
	elapsed := time.Since(start)

	v := r.base.With(c.Rules...).Classify(status, output)

	var res result.ExecutionResult
	switch v.Status {
	case result.StatusPass:
		res = result.Pass(c.Name, output, elapsed)
		r.logger.Info("check passed", "check", c.Name, "rule", v.Rule, "status", status, "output", output)
	case result.StatusSkip:
		res = result.Skip(c.Name, v.Reason)
		res.Duration = elapsed
		r.logger.Warn("check skipped", "check", c.Name, "rule", v.Rule, "command", c.Command, "status", status, "output", output)
	default:
		res = result.Fail(c.Name, v.Reason, elapsed)
		r.logger.Error("check failed", "check", c.Name, "rule", v.Rule, "command", c.Command, "status", status, "output", output)
	}

	if c.Parser != nil {
		if counts := c.Parser.Parse(output); counts.Parsed {
			res.Counts = &counts
			r.logger.Info("parsed sub-test counts", "check", c.Name,
				"passed", counts.Passed, "failed", counts.Failed, "skipped", counts.Skipped)
		} else {
			r.logger.Warn("no sub-test results found in output", "check", c.Name)
		}
	}
	return r.finish(res)
}

func (r *Runner) finish(res result.ExecutionResult) result.ExecutionResult {
	res.Type = "remote"
	return res
}
