package task

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// mockTaskRepo はrepository.TaskRepositoryのモック実装。
// 関数フィールドが未設定の場合はメモリ上のストアで動作する。
type mockTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
	clock time.Time

	findByIDFn func(ctx context.Context, id string) (*model.Task, error)
	listFn     func(ctx context.Context, q model.TaskQuery) ([]*model.Task, error)
	createFn   func(ctx context.Context, task *model.Task) error
	updateFn   func(ctx context.Context, task *model.Task) error
	deleteFn   func(ctx context.Context, id, ownerID string) error

	createCalls int
	updateCalls int
	deleteCalls int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{
		tasks: make(map[string]*model.Task),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockTaskRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func cloneTask(t *model.Task) *model.Task {
	cp := *t
	cp.Tags = append([]string{}, t.Tags...)
	return &cp
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return cloneTask(t), nil
}

func (m *mockTaskRepo) List(ctx context.Context, q model.TaskQuery) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []*model.Task{}
	search := strings.ToLower(q.Search)
	for _, t := range m.tasks {
		if t.UserID != q.OwnerID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		result = append(result, cloneTask(t))
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch q.Sort {
		case model.TaskSortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case model.TaskSortPriority:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
		case model.TaskSortDueDate:
			switch {
			case a.DueDate == nil && b.DueDate != nil:
				return false
			case a.DueDate != nil && b.DueDate == nil:
				return true
			case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(b.DueDate.Time):
				return a.DueDate.Before(b.DueDate.Time)
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return result, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, task *model.Task) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = uuid.NewString()
	now := m.tick()
	task.CreatedAt, task.UpdatedAt = now, now
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *model.Task) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return repository.ErrNotFound
	}
	task.UpdatedAt = m.tick()
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id, ownerID string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[id]
	if !ok || existing.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tasks {
		if t.UserID == userID {
			delete(m.tasks, id)
		}
	}
	return nil
}

// stubSanitizer は<script>を含む説明文だけを拒否するサニタイザ。
type stubSanitizer struct{}

func (stubSanitizer) Allows(s string) bool {
	return !strings.Contains(s, "<script>")
}

// countingMetrics は記録回数を数えるMetricsRecorder。
type countingMetrics struct {
	created int
	deleted int
}

func (c *countingMetrics) RecordTaskCreated() { c.created++ }
func (c *countingMetrics) RecordTaskDeleted() { c.deleted++ }
