package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	NotificationRetention = 30 * 24 * time.Hour
	LoginHistoryRetention = 180 * 24 * time.Hour
)

// NotificationPurger deletes read notifications older than the given age.
type NotificationPurger interface {
	PurgeRead(olderThan time.Duration) (int64, error)
}

// LoginHistoryPurger deletes login history older than the given age.
type LoginHistoryPurger interface {
	PurgeLoginHistory(olderThan time.Duration) (int64, error)
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	cron          *cron.Cron
	notifications NotificationPurger
	logins        LoginHistoryPurger
}

func New(loc *time.Location, notifications NotificationPurger, logins LoginHistoryPurger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		notifications: notifications,
		logins:        logins,
	}
}

// Start registers the housekeeping jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.PurgeNotifications); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.PurgeLoginHistory); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) PurgeNotifications() {
	defer recoverJob("purge_notifications")
	n, err := s.notifications.PurgeRead(NotificationRetention)
	if err != nil {
		zap.L().Error("purge notifications failed", zap.Error(err))
		return
	}
	zap.L().Info("purged read notifications", zap.Int64("deleted", n))
}

func (s *Scheduler) PurgeLoginHistory() {
	defer recoverJob("purge_login_history")
	n, err := s.logins.PurgeLoginHistory(LoginHistoryRetention)
	if err != nil {
		zap.L().Error("purge login history failed", zap.Error(err))
		return
	}
	zap.L().Info("purged login history", zap.Int64("deleted", n))
}

func recoverJob(name string) {
	if err := recover(); err != nil {
		zap.L().Error("job panicked", zap.String("job", name), zap.Any("panic", err))
	}
}
