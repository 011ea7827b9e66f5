package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
	"taskdeck/internal/services"
)

// fakeTaskService records calls and returns canned results.
type fakeTaskService struct {
	task *models.Task
	page *models.TaskPage
	err  error

	createdTitle string
	createdDue   *time.Time
	reorderIDs   []int64
	reorderPage  int
	listQuery    repositories.ListQuery
	deletedID    int64
}

func (f *fakeTaskService) Create(_ context.Context, _ int64, title, _ string, due *time.Time) (*models.Task, error) {
	f.createdTitle, f.createdDue = title, due
	return f.task, f.err
}

func (f *fakeTaskService) Update(_ context.Context, _, _ int64, _, _ string, _ *time.Time) (*models.Task, error) {
	return f.task, f.err
}

func (f *fakeTaskService) UpdateStatus(_ context.Context, _, _ int64, _ models.TaskStatus) (*models.Task, error) {
	return f.task, f.err
}

func (f *fakeTaskService) Delete(_ context.Context, _, id int64) error {
	f.deletedID = id
	return f.err
}

func (f *fakeTaskService) Reorder(_ context.Context, _ int64, ids []int64, page, _ int) error {
	f.reorderIDs, f.reorderPage = ids, page
	return f.err
}

func (f *fakeTaskService) List(_ context.Context, _ int64, q repositories.ListQuery) (*models.TaskPage, error) {
	f.listQuery = q
	return f.page, f.err
}

func newTaskRouter(svc services.TaskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTaskHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, int64(1)) })
	r.POST("/api/tasks", h.Create)
	r.GET("/api/tasks", h.List)
	r.PATCH("/api/tasks/reorder", h.Reorder)
	r.PATCH("/api/tasks/:id", h.UpdateStatus)
	r.PUT("/api/tasks/:id", h.Update)
	r.DELETE("/api/tasks/:id", h.Delete)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTaskHandler(t *testing.T) {
	svc := &fakeTaskService{task: &models.Task{ID: 5, UserID: 1, Title: "buy milk", Status: models.StatusPending}}
	r := newTaskRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/tasks", `{"title":"buy milk","due_date":"2026-09-01T17:30"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.createdTitle != "buy milk" {
		t.Fatalf("created title = %q", svc.createdTitle)
	}
	if svc.createdDue == nil || svc.createdDue.Hour() != 17 || svc.createdDue.Minute() != 30 {
		t.Fatalf("parsed due = %v", svc.createdDue)
	}

	var got models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != 5 || got.SortOrder != 0 {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestCreateTaskHandlerRejectsBadInput(t *testing.T) {
	svc := &fakeTaskService{}
	r := newTaskRouter(svc)

	for name, body := range map[string]string{
		"missing title": `{"description":"no title"}`,
		"bad due date":  `{"title":"x","due_date":"tomorrow"}`,
		"not json":      `title=x`,
	} {
		if w := doJSON(r, http.MethodPost, "/api/tasks", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestListHandlerPassesQuery(t *testing.T) {
	svc := &fakeTaskService{page: &models.TaskPage{Tasks: []models.Task{}, TotalPages: 1, CurrentPage: 2}}
	r := newTaskRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/tasks?status=pending&sortBy=dueDate_asc&page=2&limit=5&search=milk", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	want := repositories.ListQuery{Status: "pending", SortBy: "dueDate_asc", Search: "milk", Page: 2, PageSize: 5}
	if svc.listQuery != want {
		t.Fatalf("query = %+v, want %+v", svc.listQuery, want)
	}
	if !strings.Contains(w.Body.String(), `"tasks":[]`) {
		t.Fatalf("empty page must serialize tasks as []: %s", w.Body.String())
	}
}

func TestListHandlerRejectsBadPagination(t *testing.T) {
	r := newTaskRouter(&fakeTaskService{})

	// Explicit values must be positive integers; only absence defaults.
	for _, query := range []string{
		"page=abc", "limit=ten",
		"page=0", "limit=0",
		"page=-1", "limit=-5",
	} {
		if w := doJSON(r, http.MethodGet, "/api/tasks?"+query, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", query, w.Code)
		}
	}
}

func TestReorderHandler(t *testing.T) {
	svc := &fakeTaskService{}
	r := newTaskRouter(svc)

	w := doJSON(r, http.MethodPatch, "/api/tasks/reorder", `{"orderedIds":[3,1,2],"page":2,"limit":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(svc.reorderIDs) != 3 || svc.reorderIDs[0] != 3 || svc.reorderPage != 2 {
		t.Fatalf("service got ids=%v page=%d", svc.reorderIDs, svc.reorderPage)
	}
}

func TestReorderHandlerRequiresList(t *testing.T) {
	r := newTaskRouter(&fakeTaskService{})

	for name, body := range map[string]string{
		"missing field": `{"page":1}`,
		"null list":     `{"orderedIds":null}`,
		"not an array":  `{"orderedIds":"1,2,3"}`,
		"empty request": `{}`,
	} {
		w := doJSON(r, http.MethodPatch, "/api/tasks/reorder", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestReorderHandlerDefaultsPage(t *testing.T) {
	svc := &fakeTaskService{}
	r := newTaskRouter(svc)

	w := doJSON(r, http.MethodPatch, "/api/tasks/reorder", `{"orderedIds":[1]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.reorderPage != 1 {
		t.Fatalf("page defaulted to %d, want 1", svc.reorderPage)
	}
}

func TestReorderHandlerRejectsNonPositivePage(t *testing.T) {
	r := newTaskRouter(&fakeTaskService{})

	for _, body := range []string{
		`{"orderedIds":[1],"page":0}`,
		`{"orderedIds":[1],"page":-2}`,
	} {
		if w := doJSON(r, http.MethodPatch, "/api/tasks/reorder", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestErrorTaxonomyMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ErrInvalidInput, http.StatusBadRequest},
		{"not found or foreign", services.ErrNotFound, http.StatusNotFound},
		{"persistence", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTaskRouter(&fakeTaskService{err: tc.err})
			w := doJSON(r, http.MethodDelete, "/api/tasks/9", "")
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	svc := &fakeTaskService{}
	r := newTaskRouter(svc)

	w := doJSON(r, http.MethodDelete, "/api/tasks/12", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.deletedID != 12 {
		t.Fatalf("deleted id = %d, want 12", svc.deletedID)
	}
	if !strings.Contains(w.Body.String(), "task deleted") {
		t.Fatalf("body = %s", w.Body.String())
	}

	if w := doJSON(r, http.MethodDelete, "/api/tasks/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id status = %d, want 400", w.Code)
	}
}

func TestParseDueDateLayouts(t *testing.T) {
	for _, raw := range []string{
		"2026-09-01T17:30:00Z",
		"2026-09-01T17:30:00",
		"2026-09-01T17:30",
	} {
		due, err := parseDueDate(raw)
		if err != nil || due == nil {
			t.Errorf("parseDueDate(%q) = %v, %v", raw, due, err)
		}
	}

	if due, err := parseDueDate(""); err != nil || due != nil {
		t.Errorf("empty due date must parse to nil, got %v, %v", due, err)
	}
	if _, err := parseDueDate("01/09/2026"); err == nil {
		t.Error("slash date must be rejected")
	}
}
