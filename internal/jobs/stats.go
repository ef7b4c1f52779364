// Package jobs runs periodic background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"ideaspark/internal/metrics"
	"ideaspark/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StatsSource provides user statistics; *services.UserService satisfies it.
type StatsSource interface {
	Statistics(ctx context.Context) (services.UserStatistics, error)
}

// ReportStats logs the current user statistics and exports them as gauges.
func ReportStats(ctx context.Context, source StatsSource, log *logrus.Logger) error {
	stats, err := source.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect user statistics: %w", err)
	}
	metrics.SetUserStats(stats.TotalUsers, stats.ActiveUsers, stats.TodayNewUsers)
	log.WithFields(logrus.Fields{
		"total_users":     stats.TotalUsers,
		"active_users":    stats.ActiveUsers,
		"today_new_users": stats.TodayNewUsers,
	}).Info("user statistics")
	return nil
}

// NewScheduler schedules ReportStats on spec, a standard cron expression or
// a descriptor such as @hourly. The caller starts and stops the scheduler.
func NewScheduler(spec string, source StatsSource, log *logrus.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := ReportStats(ctx, source, log); err != nil {
			log.WithError(err).Warn("statistics job failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_CRON %q: %w", spec, err)
	}
	return c, nil
}
