package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, tags, created_at, updated_at`

// priorityRankExpr は優先度を high=3, medium=2, low=1 に変換する。
// 文字列のままソートすると辞書順になるため数値に変換して並べる。
const priorityRankExpr = `CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END`

// orderByClauses は並び順ごとのORDER BY句。
// 同順位は作成日時の降順、さらにIDで決定的に並べる。
var orderByClauses = map[model.TaskSort]string{
	model.TaskSortNewest:   "created_at DESC, id DESC",
	model.TaskSortOldest:   "created_at ASC, id ASC",
	model.TaskSortPriority: priorityRankExpr + " DESC, created_at DESC, id DESC",
	model.TaskSortDueDate:  "due_date ASC NULLS LAST, created_at DESC, id DESC",
}

// taskScanner はsql.Rowとsql.Rowsの共通インターフェース。
type taskScanner interface {
	Scan(dest ...any) error
}

func scanTask(s taskScanner) (*model.Task, error) {
	task := &model.Task{}
	var status, priority string
	var dueDate sql.NullTime
	var tags pq.StringArray

	if err := s.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&status, &priority, &dueDate, &tags,
		&task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = model.TaskStatus(status)
	task.Priority = model.TaskPriority(priority)
	if dueDate.Valid {
		d := model.DateOf(dueDate.Time)
		task.DueDate = &d
	}
	task.Tags = []string(tags)
	if task.Tags == nil {
		task.Tags = []string{}
	}

	return task, nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
// IDがUUID形式でない場合はクエリを発行せずnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return task, nil
}

// buildListQuery はTaskQueryからパラメータ化されたSELECT文を組み立てる。
// 所有者条件は常に$1として先頭に置く。
func buildListQuery(q model.TaskQuery) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{q.OwnerID}
	argIndex := 2

	if q.Search != "" {
		// 正規表現やLIKEのメタ文字を解釈させないためstrposで部分一致を判定する
		fmt.Fprintf(&sb,
			" AND (strpos(lower(title), lower($%d)) > 0 OR strpos(lower(description), lower($%d)) > 0)",
			argIndex, argIndex,
		)
		args = append(args, q.Search)
		argIndex++
	}

	if q.Status != "" {
		fmt.Fprintf(&sb, " AND status = $%d", argIndex)
		args = append(args, string(q.Status))
		argIndex++
	}

	if q.Priority != "" {
		fmt.Fprintf(&sb, " AND priority = $%d", argIndex)
		args = append(args, string(q.Priority))
	}

	order, ok := orderByClauses[q.Sort]
	if !ok {
		order = orderByClauses[model.TaskSortNewest]
	}
	sb.WriteString(" ORDER BY " + order)

	return sb.String(), args
}

// List は検索条件に一致するタスクを返す。該当なしの場合は空スライスを返す。
func (r *PostgresTaskRepo) List(ctx context.Context, q model.TaskQuery) ([]*model.Task, error) {
	if _, err := uuid.Parse(q.OwnerID); err != nil {
		return []*model.Task{}, nil
	}

	query, args := buildListQuery(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Create はタスクを作成する。IDはここで採番し、日時はDBのnow()を使う。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	task.ID = uuid.NewString()
	if task.Tags == nil {
		task.Tags = []string{}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		task.ID, task.UserID, task.Title, task.Description,
		string(task.Status), string(task.Priority), dueDateValue(task.DueDate), pq.Array(task.Tags),
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// Update はタスクの可変フィールドを上書きする。user_idは更新しない。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	if task.Tags == nil {
		task.Tags = []string{}
	}

	err := r.db.QueryRowContext(ctx,
		`UPDATE tasks
		 SET title = $3, description = $4, status = $5, priority = $6,
		     due_date = $7, tags = $8, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`,
		task.ID, task.UserID, task.Title, task.Description,
		string(task.Status), string(task.Priority), dueDateValue(task.DueDate), pq.Array(task.Tags),
	).Scan(&task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete は所有者が一致するタスクを削除する。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUserID はユーザーの全タスクを削除する。
func (r *PostgresTaskRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete tasks by user: %w", err)
	}
	return nil
}

// dueDateValue は期日をDATE列に渡す値に変換する。期日なしはNULL。
func dueDateValue(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
