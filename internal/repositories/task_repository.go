package repositories

import (
	"context"
	"database/sql"
	"time"

	"taskdeck/internal/models"
)

// TaskRepository is the persistence adapter for tasks. Every method is
// scoped by the owning user; "not found" and "not owned" are the same
// condition (row predicate misses) and are reported as found=false.
type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, userID, id int64) (*models.Task, error)
	List(ctx context.Context, userID int64, q ListQuery) ([]models.Task, int, error)

	NextOrder(ctx context.Context, userID int64) (int, error)
	Reorder(ctx context.Context, userID int64, orderedIDs []int64, offset int) error

	Update(ctx context.Context, task *models.Task) (bool, error)
	UpdateStatus(ctx context.Context, userID, id int64, to models.TaskStatus) (bool, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)

	ListDueSoon(ctx context.Context, window time.Duration, limit int) ([]models.Task, error)
	SetNotificationSent(ctx context.Context, id int64) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, description, status, due_date, sort_order, notification_sent)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Status,
		task.DueDate, task.SortOrder, task.NotificationSent,
	).Scan(&task.ID, &task.CreatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, userID, id int64) (*models.Task, error) {
	query := `SELECT id, user_id, title, description, status, due_date, sort_order, created_at, notification_sent
	FROM tasks WHERE id = $1 AND user_id = $2`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &task.Status,
		&task.DueDate, &task.SortOrder, &task.CreatedAt, &task.NotificationSent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, userID int64, q ListQuery) ([]models.Task, int, error) {
	countSQL, pageSQL, countArgs, pageArgs := buildTaskListQuery(userID, q)

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
			&t.DueDate, &t.SortOrder, &t.CreatedAt, &t.NotificationSent,
		); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

func (r *taskRepository) NextOrder(ctx context.Context, userID int64) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM tasks WHERE user_id = $1`, userID,
	).Scan(&next)
	return next, err
}

// Reorder reassigns sort_order = offset + position for each id, in one
// transaction. Ids not owned by userID match zero rows and are skipped
// without aborting the rest of the batch.
func (r *taskRepository) Reorder(ctx context.Context, userID int64, orderedIDs []int64, offset int) error {
	if len(orderedIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET sort_order = $1 WHERE id = $2 AND user_id = $3`,
			offset+i, id, userID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) (bool, error) {
	// Any edit resets notification_sent: the due date may have moved in a
	// due-relevant way, and the reminder sweep must be allowed to fire again.
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET title=$1, description=$2, due_date=$3, notification_sent=FALSE
		WHERE id=$4 AND user_id=$5`,
		task.Title, task.Description, task.DueDate, task.ID, task.UserID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *taskRepository) UpdateStatus(ctx context.Context, userID, id int64, to models.TaskStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, notification_sent=FALSE WHERE id=$2 AND user_id=$3`,
		to, id, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *taskRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *taskRepository) ListDueSoon(ctx context.Context, window time.Duration, limit int) ([]models.Task, error) {
	q := `
SELECT id, user_id, title, description, status, due_date, sort_order, created_at, notification_sent
FROM tasks
WHERE due_date IS NOT NULL
  AND due_date >= NOW()
  AND due_date <= NOW() + $1 * INTERVAL '1 second'
  AND status <> 'completed'
  AND notification_sent = FALSE
ORDER BY due_date ASC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, int64(window.Seconds()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
			&t.DueDate, &t.SortOrder, &t.CreatedAt, &t.NotificationSent,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *taskRepository) SetNotificationSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET notification_sent = TRUE WHERE id = $1`, id)
	return err
}
