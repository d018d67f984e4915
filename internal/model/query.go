package model

// TaskSort はタスク一覧の並び順を表す。
type TaskSort string

const (
	// TaskSortNewest は作成日時の降順。未指定時のデフォルト。
	TaskSortNewest TaskSort = "newest"
	// TaskSortOldest は作成日時の昇順。
	TaskSortOldest TaskSort = "oldest"
	// TaskSortPriority は優先度の降順（high → medium → low）。
	TaskSortPriority TaskSort = "priority"
	// TaskSortDueDate は期日の昇順。期日なしのタスクは末尾。
	TaskSortDueDate TaskSort = "dueDate"
)

// Valid は並び順が定義済みの値かを返す。
func (s TaskSort) Valid() bool {
	switch s {
	case TaskSortNewest, TaskSortOldest, TaskSortPriority, TaskSortDueDate:
		return true
	}
	return false
}

// TaskQuery はタスク一覧取得の宣言的な検索条件。
// 各条件はAND結合され、OwnerIDの条件は常に適用される。
// ゼロ値のフィールドはその次元の条件なしを意味する。
type TaskQuery struct {
	OwnerID  string
	Search   string
	Status   TaskStatus
	Priority TaskPriority
	Sort     TaskSort
}
