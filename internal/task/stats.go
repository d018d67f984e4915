package task

import "github.com/hitoshi/taskman/internal/model"

// Summarize はタスク集合の件数を集計する。
// 未定義のステータスを持つタスクは存在しない前提で、Total = Pending + InProgress + Completed となる。
func Summarize(tasks []*model.Task) model.TaskStats {
	var stats model.TaskStats
	for _, t := range tasks {
		stats.Total++
		switch t.Status {
		case model.TaskStatusPending:
			stats.Pending++
		case model.TaskStatusInProgress:
			stats.InProgress++
		case model.TaskStatusCompleted:
			stats.Completed++
		}
		if t.Priority == model.TaskPriorityHigh {
			stats.HighPriority++
		}
	}
	return stats
}
