// Package jobs runs scheduled background work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron   *cron.Cron
	quota  *QuotaSweep
	logger *zap.Logger
}

func NewCronManager(quota *QuotaSweep, logger *zap.Logger) *CronManager {
	return &CronManager{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		quota:  quota,
		logger: logger.Named("jobs"),
	}
}

// SetupJobs registers the quota sweep on spec, a standard five-field cron
// expression.
func (cm *CronManager) SetupJobs(spec string) error {
	_, err := cm.cron.AddFunc(spec, cm.runQuotaSweep)
	return err
}

func (cm *CronManager) runQuotaSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	n, err := cm.quota.Run(ctx)
	if err != nil {
		cm.logger.Error("quota sweep failed", zap.Int("raised", n), zap.Error(err))
		return
	}
	cm.logger.Info("quota sweep completed", zap.Int("raised", n), zap.Duration("took", time.Since(start)))
}

func (cm *CronManager) Start() {
	cm.cron.Start()
	cm.logger.Info("cron jobs started", zap.Int("entries", len(cm.cron.Entries())))
}

// Stop waits for running jobs to finish or ctx to expire.
func (cm *CronManager) Stop(ctx context.Context) {
	done := cm.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
