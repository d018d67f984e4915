package model

import "time"

// TaskStatus はタスクの進捗状態を表す。
type TaskStatus string

const (
	// TaskStatusPending は未着手。タスク作成時のデフォルト。
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress は進行中。
	TaskStatusInProgress TaskStatus = "in-progress"
	// TaskStatusCompleted は完了。
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid はステータスが定義済みの値かを返す。
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority はタスクの優先度を表す。
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid は優先度が定義済みの値かを返す。
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Rank は優先度の大小比較用の値を返す（high=3, medium=2, low=1）。
// 未定義の値は0。
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	}
	return 0
}

// Task はユーザーが所有するタスクを表す。
// UserIDは作成時に一度だけ設定され、以後変更されない。
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *Date
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskStats はユーザーのタスク件数の集計結果。
type TaskStats struct {
	Total        int
	Pending      int
	InProgress   int
	Completed    int
	HighPriority int
}
