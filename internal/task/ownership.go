package task

import "github.com/hitoshi/taskman/internal/model"

// OwnedBy はタスクが指定ユーザーの所有物かを返す。
// 取得・更新・削除のすべてでこの判定を使う。
func OwnedBy(t *model.Task, userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}
