package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/config"
	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
	"taskdeck/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID := getUserID(c)

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		config.Logger.Infof("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		config.Logger.Infof("[task][create][err] invalid due_date=%q: %v", req.DueDate, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
		return
	}

	task, err := h.service.Create(c.Request.Context(), userID, req.Title, req.Description, due)
	if err != nil {
		respondError(c, "task:create", err)
		return
	}
	config.Logger.Infof("[task][create][ok] id=%d user=%d order=%d", task.ID, userID, task.SortOrder)
	c.JSON(http.StatusCreated, task)
}

// GET /api/tasks?status=&sortBy=&page=&limit=&search=
func (h *TaskHandler) List(c *gin.Context) {
	userID := getUserID(c)

	q := repositories.ListQuery{
		Status: c.DefaultQuery("status", "all"),
		SortBy: c.Query("sortBy"),
		Search: c.Query("search"),
	}
	if v, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		q.Page = n
	}
	if v, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		q.PageSize = n
	}

	page, err := h.service.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, "task:list", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PATCH /api/tasks/reorder
func (h *TaskHandler) Reorder(c *gin.Context) {
	userID := getUserID(c)

	var req struct {
		OrderedIDs *[]int64 `json:"orderedIds" binding:"required"`
		Page       *int     `json:"page"`
		Limit      int      `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		config.Logger.Infof("[task][reorder][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderedIds must be a list"})
		return
	}
	page := 1
	if req.Page != nil {
		// An explicit page is validated; only an absent one defaults.
		if *req.Page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = *req.Page
	}

	if err := h.service.Reorder(c.Request.Context(), userID, *req.OrderedIDs, page, req.Limit); err != nil {
		respondError(c, "task:reorder", err)
		return
	}
	config.Logger.Infof("[task][reorder][ok] user=%d page=%d count=%d", userID, page, len(*req.OrderedIDs))
	c.JSON(http.StatusOK, gin.H{"message": "order updated"})
}

// PATCH /api/tasks/:id
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	userID := getUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.UpdateStatus(c.Request.Context(), userID, id, req.Status)
	if err != nil {
		respondError(c, "task:status", err)
		return
	}
	config.Logger.Infof("[task][status][ok] id=%d user=%d status=%q", id, userID, req.Status)
	c.JSON(http.StatusOK, task)
}

// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID := getUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		config.Logger.Infof("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		config.Logger.Infof("[task][update][err] invalid due_date=%q: %v", req.DueDate, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
		return
	}

	task, err := h.service.Update(c.Request.Context(), userID, id, req.Title, req.Description, due)
	if err != nil {
		respondError(c, "task:update", err)
		return
	}
	config.Logger.Infof("[task][update][ok] id=%d user=%d", id, userID)
	c.JSON(http.StatusOK, task)
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := getUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, "task:delete", err)
		return
	}
	config.Logger.Infof("[task][delete][ok] id=%d user=%d", id, userID)
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}
