package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

func sampleTask() *model.Task {
	due := model.NewDate(2024, time.June, 1)
	return &model.Task{
		ID:        "7b0c1c44-8f5a-4a4b-9d56-2f3c3e0b6a10",
		UserID:    "user-1",
		Title:     "Buy milk",
		Status:    model.TaskStatusPending,
		Priority:  model.TaskPriorityHigh,
		DueDate:   &due,
		Tags:      []string{"groceries"},
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// --- GET /api/tasks ---

func TestTaskHandler_ListTasks_PassesQueryParams(t *testing.T) {
	var gotUser string
	var gotParams task.ListParams
	svc := &mockTaskService{
		listFn: func(ctx context.Context, userID string, params task.ListParams) ([]*model.Task, error) {
			gotUser, gotParams = userID, params
			return []*model.Task{sampleTask()}, nil
		},
	}
	h := NewTaskHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?search=milk&status=pending&priority=high&sort=dueDate", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.ListTasks(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUser != "user-1" {
		t.Errorf("userID = %q, want %q", gotUser, "user-1")
	}
	want := task.ListParams{Search: "milk", Status: "pending", Priority: "high", Sort: "dueDate"}
	if gotParams != want {
		t.Errorf("params = %+v, want %+v", gotParams, want)
	}

	var body struct {
		Success bool           `json:"success"`
		Count   int            `json:"count"`
		Tasks   []taskResponse `json:"tasks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Success || body.Count != 1 || len(body.Tasks) != 1 {
		t.Fatalf("body = %+v", body)
	}
	if body.Tasks[0].DueDate == nil || *body.Tasks[0].DueDate != "2024-06-01" {
		t.Errorf("dueDate = %v, want 2024-06-01", body.Tasks[0].DueDate)
	}
}

func TestTaskHandler_ListTasks_EmptyIsArray(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{})

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/tasks", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListTasks(w, req)

	if !strings.Contains(w.Body.String(), `"tasks":[]`) {
		t.Errorf("body = %s, want empty tasks array", w.Body.String())
	}
}

func TestTaskHandler_ListTasks_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{})

	w := httptest.NewRecorder()
	h.ListTasks(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- GET /api/tasks/{id} ---

func TestTaskHandler_GetTask_Success(t *testing.T) {
	svc := &mockTaskService{
		getFn: func(ctx context.Context, userID, taskID string) (*model.Task, error) {
			if taskID != "task-1" {
				t.Errorf("taskID = %q, want %q", taskID, "task-1")
			}
			return sampleTask(), nil
		},
	}
	h := NewTaskHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/task-1", nil)
	req = withChiURLParam(withUserID(req, "user-1"), "id", "task-1")
	w := httptest.NewRecorder()

	h.GetTask(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var raw struct {
		Task map[string]any `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if raw.Task["title"] != "Buy milk" {
		t.Errorf("title = %v", raw.Task["title"])
	}
	if raw.Task["userId"] != "user-1" {
		t.Errorf("userId = %v", raw.Task["userId"])
	}

}

func TestTaskHandler_GetTask_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", model.NewTaskNotFoundError(), http.StatusNotFound, model.ErrCodeTaskNotFound},
		{"forbidden", model.NewTaskForbiddenError("access"), http.StatusForbidden, model.ErrCodeTaskForbidden},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTaskService{
				getFn: func(ctx context.Context, userID, taskID string) (*model.Task, error) {
					return nil, tt.err
				},
			}
			h := NewTaskHandler(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/tasks/x", nil)
			req = withChiURLParam(withUserID(req, "user-1"), "id", "x")
			w := httptest.NewRecorder()

			h.GetTask(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decodeErrorBody(t, w)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if strings.Contains(body.Message, "connection refused") {
				t.Error("internal error detail must not leak to the client")
			}
		})
	}
}

// --- POST /api/tasks ---

func TestTaskHandler_CreateTask_Success(t *testing.T) {
	var gotInput task.Input
	svc := &mockTaskService{
		createFn: func(ctx context.Context, userID string, in task.Input) (*model.Task, error) {
			gotInput = in
			return sampleTask(), nil
		},
	}
	h := NewTaskHandler(svc)

	body := `{"title":"Buy milk","priority":"high","dueDate":null,"tags":["groceries"]}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(body)), "user-1")
	w := httptest.NewRecorder()

	h.CreateTask(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if !gotInput.Title.Set || gotInput.Title.Value != "Buy milk" {
		t.Errorf("title = %+v", gotInput.Title)
	}
	if !gotInput.DueDate.Set || !gotInput.DueDate.Null {
		t.Errorf("dueDate should be present and null: %+v", gotInput.DueDate)
	}
	if gotInput.Status.Set {
		t.Error("status should be absent")
	}
	if !strings.Contains(w.Body.String(), "Task created successfully") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTaskHandler_CreateTask_InvalidBody(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"malformed JSON", `{"title":`, ""},
		{"empty body", ``, ""},
		{"wrong type", `{"title": 42}`, "title"},
		{"unknown field", `{"title":"x","userId":"someone-else"}`, "userId"},
		{"trailing data", `{"title":"x"}{"title":"y"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockTaskService{
				createFn: func(ctx context.Context, userID string, in task.Input) (*model.Task, error) {
					called = true
					return sampleTask(), nil
				},
			}
			h := NewTaskHandler(svc)

			req := withUserID(httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(tt.body)), "user-1")
			w := httptest.NewRecorder()

			h.CreateTask(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if called {
				t.Error("service must not be called for an invalid body")
			}
			body := decodeErrorBody(t, w)
			if body.Code != model.ErrCodeInvalidRequest {
				t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
			}
			if tt.wantField != "" {
				if len(body.Errors) != 1 || !strings.HasPrefix(body.Errors[0].Field, tt.wantField) {
					t.Errorf("errors = %+v, want field %q", body.Errors, tt.wantField)
				}
			}
		})
	}
}

func TestTaskHandler_CreateTask_ValidationError(t *testing.T) {
	svc := &mockTaskService{
		createFn: func(ctx context.Context, userID string, in task.Input) (*model.Task, error) {
			return nil, model.NewValidationError([]model.FieldError{{Field: "title", Message: "Title is required"}})
		},
	}
	h := NewTaskHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"title":"  "}`)), "user-1")
	w := httptest.NewRecorder()

	h.CreateTask(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := decodeErrorBody(t, w)
	if len(body.Errors) != 1 || body.Errors[0].Message != "Title is required" {
		t.Errorf("errors = %+v", body.Errors)
	}
}

// --- PUT /api/tasks/{id} ---

func TestTaskHandler_UpdateTask_PassesPresenceToService(t *testing.T) {
	var gotInput task.Input
	var gotTaskID string
	svc := &mockTaskService{
		updateFn: func(ctx context.Context, userID, taskID string, in task.Input) (*model.Task, error) {
			gotInput, gotTaskID = in, taskID
			return sampleTask(), nil
		},
	}
	h := NewTaskHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/tasks/task-1", strings.NewReader(`{"status":"completed","description":""}`))
	req = withChiURLParam(withUserID(req, "user-1"), "id", "task-1")
	w := httptest.NewRecorder()

	h.UpdateTask(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotTaskID != "task-1" {
		t.Errorf("taskID = %q", gotTaskID)
	}
	if gotInput.Title.Set {
		t.Error("title should be absent")
	}
	if !gotInput.Description.Set || gotInput.Description.Value != "" {
		t.Errorf("description should be present and empty: %+v", gotInput.Description)
	}
	if gotInput.Status.Value != "completed" {
		t.Errorf("status = %+v", gotInput.Status)
	}
}

func TestTaskHandler_UpdateTask_Forbidden(t *testing.T) {
	svc := &mockTaskService{
		updateFn: func(ctx context.Context, userID, taskID string, in task.Input) (*model.Task, error) {
			return nil, model.NewTaskForbiddenError("update")
		},
	}
	h := NewTaskHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/tasks/task-1", strings.NewReader(`{"title":"x"}`))
	req = withChiURLParam(withUserID(req, "user-2"), "id", "task-1")
	w := httptest.NewRecorder()

	h.UpdateTask(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if body := decodeErrorBody(t, w); body.Message != "Not authorized to update this task" {
		t.Errorf("message = %q", body.Message)
	}
}

// --- DELETE /api/tasks/{id} ---

func TestTaskHandler_DeleteTask_Success(t *testing.T) {
	deleted := false
	svc := &mockTaskService{
		deleteFn: func(ctx context.Context, userID, taskID string) error {
			deleted = userID == "user-1" && taskID == "task-1"
			return nil
		},
	}
	h := NewTaskHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/task-1", nil)
	req = withChiURLParam(withUserID(req, "user-1"), "id", "task-1")
	w := httptest.NewRecorder()

	h.DeleteTask(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !deleted {
		t.Error("expected Delete to be called with user and task IDs")
	}
	if !strings.Contains(w.Body.String(), "Task deleted successfully") {
		t.Errorf("body = %s", w.Body.String())
	}
}

// --- GET /api/tasks/stats/overview ---

func TestTaskHandler_GetStats(t *testing.T) {
	svc := &mockTaskService{
		statsFn: func(ctx context.Context, userID string) (model.TaskStats, error) {
			return model.TaskStats{Total: 3, Pending: 1, InProgress: 1, Completed: 1, HighPriority: 2}, nil
		},
	}
	h := NewTaskHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/tasks/stats/overview", nil), "user-1")
	w := httptest.NewRecorder()

	h.GetStats(w, req)

	var body struct {
		Success bool          `json:"success"`
		Stats   statsResponse `json:"stats"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := statsResponse{Total: 3, Pending: 1, InProgress: 1, Completed: 1, HighPriority: 2}
	if body.Stats != want {
		t.Errorf("stats = %+v, want %+v", body.Stats, want)
	}
}

// --- ルーティング ---

func TestSetupTaskRoutes_StatsNotTreatedAsID(t *testing.T) {
	statsCalled := false
	svc := &mockTaskService{
		statsFn: func(ctx context.Context, userID string) (model.TaskStats, error) {
			statsCalled = true
			return model.TaskStats{}, nil
		},
		getFn: func(ctx context.Context, userID, taskID string) (*model.Task, error) {
			t.Errorf("Get should not be called, got id %q", taskID)
			return nil, model.NewTaskNotFoundError()
		},
	}
	router := SetupTaskRoutes(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/stats/overview", nil), "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !statsCalled {
		t.Errorf("status = %d, statsCalled = %v", w.Code, statsCalled)
	}
}
