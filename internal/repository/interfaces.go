// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrNotFound は更新・削除対象の行が存在しない（または所有者が異なる）場合に返る。
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail はメールアドレスの一意制約に違反した場合に返る。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。
	// 見つからない場合、またはIDがUUID形式でない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、ID・作成日時・更新日時を設定する。
	// メールアドレスが登録済みの場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile は名前・自己紹介・アバターを更新し、UpdatedAtを設定する。
	UpdateProfile(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するtasksはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// 一覧・更新・削除はすべて所有者IDで絞り込む。
type TaskRepository interface {
	// FindByID は指定IDのタスクを取得する。所有者による絞り込みは行わない。
	// 見つからない場合、またはIDがUUID形式でない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// List は検索条件に一致するタスクを条件の並び順で返す。
	// q.OwnerIDの条件は常に適用される。
	List(ctx context.Context, q model.TaskQuery) ([]*model.Task, error)

	// Create はタスクを作成し、ID・作成日時・更新日時を設定する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクの可変フィールドを上書きし、UpdatedAtを設定する。
	// id と user_id の両方が一致する行がない場合はErrNotFoundを返す。
	Update(ctx context.Context, task *model.Task) error

	// Delete は所有者が一致するタスクを削除する。
	// 該当行がない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id, ownerID string) error

	// DeleteByUserID はユーザーの全タスクを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
