package services

import (
	"context"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/realtime"
	"taskdeck/internal/repositories"
)

// ReminderService periodically scans for tasks whose due date falls inside
// the due window and pushes task_due_soon to the owner's live connection.
// A task is flagged only after an emit attempt, so owners with no live
// connection are retried on later sweeps while still inside the window.
type ReminderService struct {
	repo     repositories.TaskRepository
	notifier Notifier
	interval time.Duration
	window   time.Duration
	limit    int
}

func NewReminderService(repo repositories.TaskRepository, notifier Notifier, cfg config.RemindersConfig) *ReminderService {
	return &ReminderService{
		repo:     repo,
		notifier: notifier,
		interval: cfg.Interval.Std(),
		window:   cfg.DueWindow.Std(),
		limit:    cfg.BatchLimit,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. It shares the persistence pool with request
// handling, so failures are logged and left for the next tick rather than
// propagated.
func (s *ReminderService) Sweep(ctx context.Context) {
	tasks, err := s.repo.ListDueSoon(ctx, s.window, s.limit)
	if err != nil {
		config.Logger.Errorf("[reminder][sweep][err] list due soon: %v", err)
		return
	}

	for _, t := range tasks {
		payload := realtime.DueSoonPayload{Title: t.Title}
		if t.DueDate != nil {
			payload.DueDate = t.DueDate.Format(time.RFC3339)
		}
		if !s.notifier.NotifyDueSoon(t.UserID, payload) {
			// No live connection: leave unflagged, retry next sweep.
			continue
		}
		if err := s.repo.SetNotificationSent(ctx, t.ID); err != nil {
			config.Logger.Errorf("[reminder][sweep][err] flag task=%d: %v", t.ID, err)
			continue
		}
		config.Logger.Infof("[reminder][sweep] due soon pushed task=%d user=%d", t.ID, t.UserID)
	}
}
