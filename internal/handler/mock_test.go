package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
	"github.com/hitoshi/taskman/internal/user"
)

// --- モック定義 ---

// mockTaskService はTaskServiceInterfaceのモック実装。
type mockTaskService struct {
	listFn   func(ctx context.Context, userID string, params task.ListParams) ([]*model.Task, error)
	getFn    func(ctx context.Context, userID, taskID string) (*model.Task, error)
	createFn func(ctx context.Context, userID string, in task.Input) (*model.Task, error)
	updateFn func(ctx context.Context, userID, taskID string, in task.Input) (*model.Task, error)
	deleteFn func(ctx context.Context, userID, taskID string) error
	statsFn  func(ctx context.Context, userID string) (model.TaskStats, error)
}

func (m *mockTaskService) List(ctx context.Context, userID string, params task.ListParams) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, params)
	}
	return []*model.Task{}, nil
}

func (m *mockTaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, taskID)
	}
	return nil, model.NewTaskNotFoundError()
}

func (m *mockTaskService) Create(ctx context.Context, userID string, in task.Input) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockTaskService) Update(ctx context.Context, userID, taskID string, in task.Input) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, taskID, in)
	}
	return nil, nil
}

func (m *mockTaskService) Delete(ctx context.Context, userID, taskID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, taskID)
	}
	return nil
}

func (m *mockTaskService) Stats(ctx context.Context, userID string) (model.TaskStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, userID)
	}
	return model.TaskStats{}, nil
}

// mockProfileService はProfileServiceInterfaceのモック実装。
type mockProfileService struct {
	getProfileFn    func(ctx context.Context, userID string) (*model.User, error)
	updateProfileFn func(ctx context.Context, userID string, in user.ProfileInput) (*model.User, error)
	withdrawFn      func(ctx context.Context, userID string) error
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID string, in user.ProfileInput) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockProfileService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	signupFn func(ctx context.Context, in auth.SignupInput) (*auth.Result, error)
	loginFn  func(ctx context.Context, email, password string) (*auth.Result, error)
}

func (m *mockAuthService) Signup(ctx context.Context, in auth.SignupInput) (*auth.Result, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, in)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.Result, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, model.NewInvalidCredentialsError()
}

// --- ヘルパー ---

// withUserID はテスト用に認証済みユーザーIDをコンテキストに注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
