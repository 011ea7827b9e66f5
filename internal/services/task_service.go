package services

import (
	"context"
	"strings"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/models"
	"taskdeck/internal/realtime"
	"taskdeck/internal/repositories"
)

// Notifier is what the task lifecycle and the reminder sweep need from the
// realtime hub. *realtime.Hub satisfies it; tests plug in fakes.
type Notifier interface {
	BroadcastTasksUpdated()
	NotifyDueSoon(userID int64, payload realtime.DueSoonPayload) bool
}

// TaskService orchestrates task mutations and listing: ordering on create,
// ownership-scoped updates, the page-window reorder transaction, and a
// tasks_updated broadcast after every committed mutation.
type TaskService interface {
	Create(ctx context.Context, userID int64, title, description string, dueDate *time.Time) (*models.Task, error)
	Update(ctx context.Context, userID, id int64, title, description string, dueDate *time.Time) (*models.Task, error)
	UpdateStatus(ctx context.Context, userID, id int64, to models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
	Reorder(ctx context.Context, userID int64, orderedIDs []int64, page, pageSize int) error
	List(ctx context.Context, userID int64, q repositories.ListQuery) (*models.TaskPage, error)
}

type taskService struct {
	repo            repositories.TaskRepository
	notifier        Notifier
	defaultPageSize int
}

func NewTaskService(repo repositories.TaskRepository, notifier Notifier, defaultPageSize int) TaskService {
	if defaultPageSize < 1 {
		defaultPageSize = 10
	}
	return &taskService{repo: repo, notifier: notifier, defaultPageSize: defaultPageSize}
}

func (s *taskService) Create(ctx context.Context, userID int64, title, description string, dueDate *time.Time) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, invalidf("title is required")
	}

	next, err := s.repo.NextOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      models.StatusPending,
		DueDate:     dueDate,
		SortOrder:   next,
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}

	s.notifier.BroadcastTasksUpdated()
	return task, nil
}

func (s *taskService) Update(ctx context.Context, userID, id int64, title, description string, dueDate *time.Time) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, invalidf("title is required")
	}

	task := &models.Task{ID: id, UserID: userID, Title: title, Description: description, DueDate: dueDate}
	found, err := s.repo.Update(ctx, task)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	s.notifier.BroadcastTasksUpdated()
	return s.repo.FindByID(ctx, userID, id)
}

func (s *taskService) UpdateStatus(ctx context.Context, userID, id int64, to models.TaskStatus) (*models.Task, error) {
	if !models.IsValidTaskStatus(to) {
		return nil, invalidf("unknown status %q", to)
	}

	found, err := s.repo.UpdateStatus(ctx, userID, id, to)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	s.notifier.BroadcastTasksUpdated()
	return s.repo.FindByID(ctx, userID, id)
}

func (s *taskService) Delete(ctx context.Context, userID, id int64) error {
	found, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	s.notifier.BroadcastTasksUpdated()
	return nil
}

// Reorder reassigns the order of the given ids within one page window:
// order = (page-1)*pageSize + position. Ids the user does not own are
// skipped inside the transaction without failing the batch. Other pages are
// not renumbered.
func (s *taskService) Reorder(ctx context.Context, userID int64, orderedIDs []int64, page, pageSize int) error {
	if page < 1 {
		return invalidf("page must be a positive integer, got %d", page)
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if len(orderedIDs) == 0 {
		return nil // nothing to move; deliberately no broadcast
	}

	offset := (page - 1) * pageSize
	if err := s.repo.Reorder(ctx, userID, orderedIDs, offset); err != nil {
		return err
	}

	config.Logger.Debugf("[task][reorder] user=%d page=%d size=%d ids=%d", userID, page, pageSize, len(orderedIDs))
	s.notifier.BroadcastTasksUpdated()
	return nil
}

func (s *taskService) List(ctx context.Context, userID int64, q repositories.ListQuery) (*models.TaskPage, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = s.defaultPageSize
	}
	if err := q.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}

	tasks, total, err := s.repo.List(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	totalPages := (total + q.PageSize - 1) / q.PageSize
	if totalPages < 1 {
		totalPages = 1 // pagination controls never show zero pages
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &models.TaskPage{Tasks: tasks, TotalPages: totalPages, CurrentPage: q.Page}, nil
}
