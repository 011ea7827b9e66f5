package repositories

import (
	"fmt"
	"strings"
)

// ListQuery carries the filter/sort/search/pagination parameters of one
// listing request. Page is 1-indexed.
type ListQuery struct {
	Status   string
	SortBy   string
	Search   string
	Page     int
	PageSize int
}

// taskSortClauses whitelists the accepted sortBy keys. Every sort except
// order_asc breaks ties by sort_order so pages stay stable.
var taskSortClauses = map[string]string{
	"order_asc":      "sort_order ASC",
	"createdAt_desc": "created_at DESC, sort_order ASC",
	"createdAt_asc":  "created_at ASC, sort_order ASC",
	"dueDate_desc":   "due_date DESC, sort_order ASC",
	"dueDate_asc":    "due_date ASC, sort_order ASC",
}

const defaultSortKey = "order_asc"

// Validate checks the parts of the query that cannot be defaulted away.
func (q ListQuery) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("page must be a positive integer, got %d", q.Page)
	}
	if q.PageSize < 1 {
		return fmt.Errorf("limit must be a positive integer, got %d", q.PageSize)
	}
	return nil
}

// buildTaskListQuery translates q into a count query and a page query over
// the tasks table, always scoped to the owning user. Both share the same
// argument list prefix; the page query appends LIMIT/OFFSET.
func buildTaskListQuery(userID int64, q ListQuery) (countSQL, pageSQL string, countArgs, pageArgs []interface{}) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argID := 2

	if q.Status != "" && q.Status != "all" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, q.Status)
		argID++
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argID, argID))
		args = append(args, "%"+term+"%")
		argID++
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	orderBy, ok := taskSortClauses[q.SortBy]
	if !ok {
		orderBy = taskSortClauses[defaultSortKey]
	}

	countSQL = "SELECT COUNT(*) FROM tasks" + where
	countArgs = args

	pageSQL = `SELECT id, user_id, title, description, status, due_date, sort_order, created_at, notification_sent
FROM tasks` + where +
		" ORDER BY " + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	pageArgs = append(append([]interface{}{}, args...), q.PageSize, (q.Page-1)*q.PageSize)
	return
}
