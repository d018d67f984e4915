package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// MetricsRecorder はタスク操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordTaskCreated()
	RecordTaskDeleted()
}

// Service はタスク操作のビジネスロジックを提供する。
// すべての操作は認証済みユーザーIDを受け取り、そのユーザーのタスクのみを扱う。
type Service struct {
	repo      repository.TaskRepository
	sanitizer security.ContentSanitizerService
	metrics   MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	repo repository.TaskRepository,
	sanitizer security.ContentSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// List は検索条件に一致するユーザーのタスクを返す。該当なしは空スライス。
func (s *Service) List(ctx context.Context, userID string, params ListParams) ([]*model.Task, error) {
	tasks, err := s.repo.List(ctx, BuildQuery(userID, params))
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Get は指定IDのタスクを取得する。
// 存在しない（IDの形式不正を含む）場合はTASK_NOT_FOUND、
// 他ユーザーのタスクの場合はTASK_FORBIDDENを返す。
func (s *Service) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	return s.findOwned(ctx, userID, taskID, "access")
}

// Create はタスクを作成する。所有者は常にuserIDとなる。
func (s *Service) Create(ctx context.Context, userID string, in Input) (*model.Task, error) {
	c, fieldErrors := validateInput(in, true)
	fieldErrors = append(fieldErrors, s.checkMarkup(c)...)
	if len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	t := &model.Task{
		UserID:   userID,
		Status:   model.TaskStatusPending,
		Priority: model.TaskPriorityMedium,
		Tags:     []string{},
	}
	c.apply(t)

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCreated()
	}
	slog.Debug("タスクを作成しました",
		slog.String("user_id", userID),
		slog.String("task_id", t.ID),
	)

	return t, nil
}

// Update はリクエストに含まれるフィールドのみを更新する。
// 検証はストアへのアクセス前に行う。
// 所有確認から書き込みまでの間に削除された場合はTASK_NOT_FOUNDを返す。
func (s *Service) Update(ctx context.Context, userID, taskID string, in Input) (*model.Task, error) {
	c, fieldErrors := validateInput(in, false)
	fieldErrors = append(fieldErrors, s.checkMarkup(c)...)
	if len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	t, err := s.findOwned(ctx, userID, taskID, "update")
	if err != nil {
		return nil, err
	}

	c.apply(t)

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewTaskNotFoundError()
		}
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}

	return t, nil
}

// Delete はタスクを削除する。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.findOwned(ctx, userID, taskID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewTaskNotFoundError()
		}
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTaskDeleted()
	}

	return nil
}

// Stats はユーザーの全タスクを毎回読み込み、件数を集計する。
func (s *Service) Stats(ctx context.Context, userID string) (model.TaskStats, error) {
	tasks, err := s.repo.List(ctx, model.TaskQuery{OwnerID: userID, Sort: model.TaskSortNewest})
	if err != nil {
		return model.TaskStats{}, fmt.Errorf("タスクの集計に失敗しました: %w", err)
	}
	return Summarize(tasks), nil
}

// findOwned はタスクを取得し、所有者を確認する。verbはエラーメッセージに使う。
func (s *Service) findOwned(ctx context.Context, userID, taskID, verb string) (*model.Task, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError()
	}
	if !OwnedBy(t, userID) {
		slog.Warn("他ユーザーのタスクへのアクセスを拒否しました",
			slog.String("user_id", userID),
			slog.String("task_id", taskID),
			slog.String("action", verb),
		)
		return nil, model.NewTaskForbiddenError(verb)
	}
	return t, nil
}

// checkMarkup は説明文が許可されていないマークアップを含む場合にフィールドエラーを返す。
// 説明文は書き換えずにそのまま保存する。
func (s *Service) checkMarkup(c changes) []model.FieldError {
	if s.sanitizer == nil || c.description == nil || *c.description == "" {
		return nil
	}
	if s.sanitizer.Allows(*c.description) {
		return nil
	}
	return []model.FieldError{{Field: "description", Message: "Description contains disallowed markup"}}
}
