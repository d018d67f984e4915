// Package user はユーザープロフィールと退会処理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// MaxNameLength は表示名の最大文字数。
const MaxNameLength = 100

// TaskDeleter はタスクの一括削除インターフェース。
type TaskDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileInput はプロフィール更新リクエストのフィールド。
// Emailはキーが存在した時点でエラーとする（変更不可）。
type ProfileInput struct {
	Name   model.Optional[string]
	Bio    model.Optional[string]
	Avatar model.Optional[string]
	Email  model.Optional[string]
}

// Service はユーザー管理のサービス層。
// プロフィールの取得・更新と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	taskDeleter TaskDeleter
	urlGuard    security.URLGuardService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	taskDeleter TaskDeleter,
	urlGuard security.URLGuardService,
) *Service {
	return &Service{
		userRepo:    userRepo,
		taskDeleter: taskDeleter,
		urlGuard:    urlGuard,
	}
}

// GetProfile はユーザーのプロフィールを返す。認証情報は含めない。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile はリクエストに含まれるフィールドのみを更新する。
// 違反したフィールドはすべてまとめてバリデーションエラーとして返す。
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	var fieldErrors []model.FieldError
	add := func(field, msg string) {
		fieldErrors = append(fieldErrors, model.FieldError{Field: field, Message: msg})
	}

	var name, bio, avatar *string

	if in.Email.Set {
		add("email", "Email cannot be changed")
	}

	if in.Name.Set {
		v := strings.TrimSpace(in.Name.Value)
		switch {
		case in.Name.Null || v == "":
			add("name", "Name is required")
		case utf8.RuneCountInString(v) > MaxNameLength:
			add("name", fmt.Sprintf("Name must be at most %d characters", MaxNameLength))
		default:
			name = &v
		}
	}

	if in.Bio.Set {
		v := strings.TrimSpace(in.Bio.Value)
		if utf8.RuneCountInString(v) > model.MaxBioLength {
			add("bio", fmt.Sprintf("Bio must be at most %d characters", model.MaxBioLength))
		} else {
			bio = &v
		}
	}

	if in.Avatar.Set {
		// 空文字とnullはアバターの削除
		v := strings.TrimSpace(in.Avatar.Value)
		if err := s.validateAvatar(v); err != nil {
			add("avatar", "Avatar must be a public http(s) URL")
		} else {
			avatar = &v
		}
	}

	if len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		user.Name = *name
	}
	if bio != nil {
		user.Bio = *bio
	}
	if avatar != nil {
		user.Avatar = *avatar
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}

	slog.Info("プロフィールを更新しました",
		slog.String("user_id", userID),
	)

	return user.Public(), nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: tasks → user（tasksは外部キーのCASCADEでも削除される）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. タスクを削除
	if s.taskDeleter != nil {
		if err := s.taskDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("タスクの削除に失敗しました: %w", err)
		}
	}

	// 2. ユーザーを削除
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}

func (s *Service) validateAvatar(v string) error {
	if v == "" || s.urlGuard == nil {
		return nil
	}
	return s.urlGuard.ValidateURL(v)
}

func (s *Service) findUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
