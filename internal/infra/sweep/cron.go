// Package sweep drives the scheduler's periodic maintenance pass on a cron
// cadence: snooze resumption, SLA automation, and auto-escalation all hang
// off it.
package sweep

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"riskrouter/internal/usecase"
)

type Runner struct {
	cron   *cron.Cron
	logger *log.Logger
}

// Start schedules Sweep on the given cron expression (standard 5-field
// syntax; "* * * * *" runs it every minute) and begins running it. The
// returned Runner stops cleanly via Stop.
func Start(schedule string, scheduler *usecase.Scheduler, logger *log.Logger) (*Runner, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		scheduler.Sweep(context.Background())
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Printf("sweep scheduled (cron: %s)", schedule)
	return &Runner{cron: c, logger: logger}, nil
}

// Stop halts the cadence and waits for an in-flight sweep to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Println("sweep stopped")
}
