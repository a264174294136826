package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwt/signals/internal/api"
	"github.com/mwt/signals/internal/api/handlers"
	"github.com/mwt/signals/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run as a daemon on the configured schedule",
	Long: `Starts the cron daemon and the status API server.

The daily pipeline runs on SCHEDULE_SPEC (default 16:30 exchange time
on weekdays). The API serves order history and job status, and can
trigger a run manually.

Endpoints:
  GET  /health
  GET  /api/v1/orders?date=YYYY-MM-DD
  GET  /api/v1/runs/latest
  GET  /api/v1/jobs
  POST /api/v1/jobs/daily_signals/trigger

Stop with Ctrl+C.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	sched := schedule.New(p.log, p.cfg.ExchangeLocation())
	job := schedule.NewSignalsJob(p.runner, p.cfg.Schedule.Spec, p.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register job: %w", err)
	}
	sched.Start()

	router := api.NewRouter(
		handlers.NewOrderHandler(p.store, p.log),
		handlers.NewJobHandler(sched, p.log),
		p.log,
	)
	server := api.New(p.cfg, p.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("Scheduler running, job %s on %q (%s)\n",
		job.Name(), p.cfg.Schedule.Spec, p.cfg.Schedule.Timezone)
	fmt.Printf("API listening on :%s\n", p.cfg.APIPort)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("api server: %w", err)
	case <-quit:
	}

	fmt.Println("\nShutting down...")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	fmt.Println("Stopped")
	return nil
}
