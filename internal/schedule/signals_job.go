package schedule

import (
	"context"
	"time"

	"github.com/mwt/signals/internal/runner"
	"github.com/mwt/signals/pkg/logger"
)

// SignalsJob runs the full daily pipeline on the configured spec.
type SignalsJob struct {
	runner *runner.Runner
	spec   string
	logger *logger.Logger
}

func NewSignalsJob(r *runner.Runner, spec string, log *logger.Logger) *SignalsJob {
	return &SignalsJob{runner: r, spec: spec, logger: log}
}

func (j *SignalsJob) Name() string { return "daily_signals" }

func (j *SignalsJob) Spec() string { return j.spec }

func (j *SignalsJob) Run(ctx context.Context) error {
	result, err := j.runner.Run(ctx, time.Now())
	if err != nil {
		return err
	}
	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"orders":   len(result.Orders),
		"warnings": len(result.Warnings),
	}).Info("Scheduled run finished")
	return nil
}
