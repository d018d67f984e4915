package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// List は検索条件に一致するユーザーのタスクを返す。
	List(ctx context.Context, userID string, params task.ListParams) ([]*model.Task, error)
	// Get はユーザーが所有するタスクを取得する。
	Get(ctx context.Context, userID, taskID string) (*model.Task, error)
	// Create はタスクを作成する。
	Create(ctx context.Context, userID string, in task.Input) (*model.Task, error)
	// Update はリクエストに含まれるフィールドのみを更新する。
	Update(ctx context.Context, userID, taskID string, in task.Input) (*model.Task, error)
	// Delete はタスクを削除する。
	Delete(ctx context.Context, userID, taskID string) error
	// Stats はユーザーのタスク件数を集計する。
	Stats(ctx context.Context, userID string) (model.TaskStats, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// taskRequest はタスク作成・更新リクエストのボディ。
// キーの有無で更新対象を判定するため、すべてOptionalで受ける。
type taskRequest struct {
	Title       model.Optional[string]   `json:"title"`
	Description model.Optional[string]   `json:"description"`
	Status      model.Optional[string]   `json:"status"`
	Priority    model.Optional[string]   `json:"priority"`
	DueDate     model.Optional[string]   `json:"dueDate"`
	Tags        model.Optional[[]string] `json:"tags"`
}

func (req taskRequest) toInput() task.Input {
	return task.Input{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
}

// ListTasks はタスク一覧を返す。
// GET /api/tasks?search=&status=&priority=&sort=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	tasks, err := h.service.List(r.Context(), userID, task.ListParams{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(tasks),
		"tasks":   toTaskResponses(tasks),
	})
}

// GetStats はタスクの件数集計を返す。
// GET /api/tasks/stats/overview
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   toStatsResponse(stats),
	})
}

// GetTask はタスク詳細を返す。
// GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"task":    toTaskResponse(t),
	})
}

// CreateTask はタスクを作成する。
// POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	t, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Task created successfully",
		"task":    toTaskResponse(t),
	})
}

// UpdateTask はタスクを部分更新する。
// PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	t, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Task updated successfully",
		"task":    toTaskResponse(t),
	})
}

// DeleteTask はタスクを削除する。
// DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// SetupTaskRoutes はタスク管理のルーティングを設定したchi.Routerを返す。
// 認証ミドルウェアは呼び出し側で適用する。
func SetupTaskRoutes(service TaskServiceInterface) chi.Router {
	r := chi.NewRouter()
	h := NewTaskHandler(service)

	r.Get("/", h.ListTasks)
	r.Post("/", h.CreateTask)
	// /{id} より先に登録し、"stats" がIDとして解釈されないようにする
	r.Get("/stats/overview", h.GetStats)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetTask)
		r.Put("/", h.UpdateTask)
		r.Delete("/", h.DeleteTask)
	})

	return r
}
