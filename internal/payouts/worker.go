package payouts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
)

type WeeklyPayoutArgs struct{}

func (WeeklyPayoutArgs) Kind() string { return "weekly_payout_batch" }

// WeeklyPayoutWorker runs the batch on River's schedule. Per-mechanic
// failures are carried in the batch result and do not error the job; the
// failed entries stay available_for_transfer and the next run retries them.
type WeeklyPayoutWorker struct {
	river.WorkerDefaults[WeeklyPayoutArgs]
	svc *Service
	log *slog.Logger
}

func NewWeeklyPayoutWorker(svc *Service, log *slog.Logger) *WeeklyPayoutWorker {
	if log == nil {
		log = slog.Default()
	}
	return &WeeklyPayoutWorker{svc: svc, log: log}
}

func (w *WeeklyPayoutWorker) Work(ctx context.Context, job *river.Job[WeeklyPayoutArgs]) error {
	result, err := w.svc.RunBatch(ctx)
	if err != nil {
		return fmt.Errorf("weekly payout batch: %w", err)
	}
	w.log.Info("weekly payout batch finished",
		"total_transfers", result.TotalTransfers,
		"succeeded", result.Succeeded,
		"failed", result.Failed)
	return nil
}

// WeeklySchedule returns the periodic job definition for the batch.
func WeeklySchedule(interval time.Duration) *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(interval),
		func() (river.JobArgs, *river.InsertOpts) {
			return WeeklyPayoutArgs{}, nil
		},
		&river.PeriodicJobOpts{RunOnStart: false},
	)
}
