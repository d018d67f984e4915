package task

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/taskman/internal/model"
)

// 入力値の上限
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxTags              = 20
	MaxTagLength         = 50
)

// Input はタスク作成・更新リクエストのフィールド。
// キーが存在したフィールドのみSetがtrueになる。
type Input struct {
	Title       model.Optional[string]
	Description model.Optional[string]
	Status      model.Optional[string]
	Priority    model.Optional[string]
	DueDate     model.Optional[string]
	Tags        model.Optional[[]string]
}

// changes は検証・正規化済みの変更内容。nilのフィールドは変更しない。
type changes struct {
	title       *string
	description *string
	status      *model.TaskStatus
	priority    *model.TaskPriority

	setDueDate bool
	dueDate    *model.Date

	setTags bool
	tags    []string
}

// validateInput は入力を検証し、違反したフィールドをすべて列挙する。
// creatingがtrueの場合はtitleを必須とする。
// title・status・priorityのnullや空文字は不正値、
// description・dueDate・tagsのnullや空文字は値のクリアとして扱う。
func validateInput(in Input, creating bool) (changes, []model.FieldError) {
	var c changes
	var errs []model.FieldError
	add := func(field, msg string) {
		errs = append(errs, model.FieldError{Field: field, Message: msg})
	}

	switch {
	case in.Title.Set:
		title := strings.TrimSpace(in.Title.Value)
		switch {
		case in.Title.Null || title == "":
			add("title", "Title is required")
		case utf8.RuneCountInString(title) > MaxTitleLength:
			add("title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
		default:
			c.title = &title
		}
	case creating:
		add("title", "Title is required")
	}

	if in.Description.Set {
		desc := strings.TrimSpace(in.Description.Value)
		if utf8.RuneCountInString(desc) > MaxDescriptionLength {
			add("description", fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
		} else {
			c.description = &desc
		}
	}

	if in.Status.Set {
		status := model.TaskStatus(in.Status.Value)
		if in.Status.Null || !status.Valid() {
			add("status", "Invalid status")
		} else {
			c.status = &status
		}
	}

	if in.Priority.Set {
		priority := model.TaskPriority(in.Priority.Value)
		if in.Priority.Null || !priority.Valid() {
			add("priority", "Invalid priority")
		} else {
			c.priority = &priority
		}
	}

	if in.DueDate.Set {
		raw := strings.TrimSpace(in.DueDate.Value)
		if in.DueDate.Null || raw == "" {
			c.setDueDate = true
		} else if d, err := model.ParseDate(raw); err != nil {
			add("dueDate", "Invalid due date (expected YYYY-MM-DD)")
		} else {
			c.setDueDate = true
			c.dueDate = &d
		}
	}

	if in.Tags.Set {
		tags, tagErr := normalizeTags(in.Tags.Value)
		if tagErr != "" {
			add("tags", tagErr)
		} else {
			c.setTags = true
			c.tags = tags
		}
	}

	return c, errs
}

// normalizeTags は各タグの前後空白を除去し、空のタグを取り除く。
// 順序は保持する。違反があればメッセージを返す。
func normalizeTags(raw []string) ([]string, string) {
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > MaxTagLength {
			return nil, fmt.Sprintf("Tag must be at most %d characters", MaxTagLength)
		}
		tags = append(tags, t)
	}
	if len(tags) > MaxTags {
		return nil, fmt.Sprintf("Too many tags (max %d)", MaxTags)
	}
	return tags, ""
}

// apply は検証済みの変更をタスクに反映する。
func (c changes) apply(t *model.Task) {
	if c.title != nil {
		t.Title = *c.title
	}
	if c.description != nil {
		t.Description = *c.description
	}
	if c.status != nil {
		t.Status = *c.status
	}
	if c.priority != nil {
		t.Priority = *c.priority
	}
	if c.setDueDate {
		t.DueDate = c.dueDate
	}
	if c.setTags {
		t.Tags = c.tags
	}
}
