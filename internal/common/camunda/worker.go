// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"property-quote/internal/common/logger"
)

type WorkerConfig struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

// CamundaWorker owns one open job worker for a task type.
type CamundaWorker struct {
	client zbc.Client
	worker worker.JobWorker
	config WorkerConfig
	logger logger.Logger
}

// NewWorker opens a job worker that dispatches jobs of cfg.TaskType to handler.
func NewWorker(client zbc.Client, cfg WorkerConfig, handler worker.JobHandler, log logger.Logger) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": cfg.TaskType})

	step := client.NewJobWorker().
		JobType(cfg.TaskType).
		Handler(handler).
		MaxJobsActive(cfg.MaxJobsActive)
	if cfg.Timeout > 0 {
		step = step.Timeout(cfg.Timeout)
	}

	w := &CamundaWorker{
		client: client,
		worker: step.Open(),
		config: cfg,
		logger: log,
	}
	log.Info("worker started", map[string]interface{}{"maxJobsActive": cfg.MaxJobsActive})
	return w
}

// Stop closes the job worker; the shared client is left open.
func (w *CamundaWorker) Stop(ctx context.Context) {
	w.logger.Info("stopping worker", nil)

	done := make(chan struct{})
	go func() {
		w.worker.Close()
		w.worker.AwaitClose()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("worker did not stop before deadline", map[string]interface{}{"error": ctx.Err().Error()})
	}
}
