package jobs

import (
	"context"
	"time"

	"github.com/kamtrack/lead-api/internal/repository"
	"github.com/kamtrack/lead-api/internal/schedule"
	"go.uber.org/zap"
)

// CallReminderJob sweeps every active KAM's book once a day and logs the
// leads due for a call, evaluated in each KAM's own timezone.
type CallReminderJob struct {
	leadRepo *repository.LeadRepository
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

// NewCallReminderJob creates a new call reminder job
func NewCallReminderJob(
	leadRepo *repository.LeadRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *CallReminderJob {
	return &CallReminderJob{
		leadRepo: leadRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Run executes one reminder sweep
func (j *CallReminderJob) Run(ctx context.Context) {
	start := time.Now()

	kams, err := j.userRepo.ListActiveKams(ctx)
	if err != nil {
		j.logger.Error("call reminder sweep failed to list KAMs", zap.Error(err))
		return
	}

	totalDue := 0
	for _, kam := range kams {
		loc := schedule.LoadLocation(kam.Timezone)
		endOfDay := schedule.StartOfDay(time.Now().In(loc), loc).AddDate(0, 0, 1)

		leads, err := j.leadRepo.ListDueBy(ctx, kam.ID, endOfDay)
		if err != nil {
			j.logger.Error("call reminder sweep failed for KAM",
				zap.String("kam_id", kam.ID.String()),
				zap.Error(err))
			continue
		}
		if len(leads) == 0 {
			continue
		}

		totalDue += len(leads)
		overdue := 0
		startOfDay := schedule.StartOfDay(time.Now().In(loc), loc)
		for _, lead := range leads {
			if lead.NextCallDate != nil && lead.NextCallDate.Before(startOfDay) {
				overdue++
			}
		}

		j.logger.Info("call reminders",
			zap.String("kam_id", kam.ID.String()),
			zap.String("kam_name", kam.Name),
			zap.Int("due_today", len(leads)-overdue),
			zap.Int("overdue", overdue))
	}

	j.logger.Info("call reminder sweep completed",
		zap.Int("kam_count", len(kams)),
		zap.Int("leads_due", totalDue),
		zap.Duration("duration", time.Since(start)))
}
