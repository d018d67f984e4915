// Package task はタスクの検索・作成・更新・削除・集計のドメインロジックを提供する。
package task

import (
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// ListParams は一覧取得リクエストのクエリパラメータ（未解釈の文字列）。
type ListParams struct {
	Search   string
	Status   string
	Priority string
	Sort     string
}

// BuildQuery はクエリパラメータから検索条件を組み立てる。
// 所有者条件は常にownerIDで設定され、パラメータで上書きできない。
// 未知のstatus・priorityは無視し、未知のsortはnewestとして扱う。
// クエリの実行は行わない。
func BuildQuery(ownerID string, p ListParams) model.TaskQuery {
	q := model.TaskQuery{
		OwnerID: ownerID,
		Search:  strings.TrimSpace(p.Search),
		Sort:    model.TaskSortNewest,
	}

	if s := model.TaskStatus(p.Status); s.Valid() {
		q.Status = s
	}
	if pr := model.TaskPriority(p.Priority); pr.Valid() {
		q.Priority = pr
	}
	if so := model.TaskSort(p.Sort); so.Valid() {
		q.Sort = so
	}

	return q
}
