// Package tasks содержит модель задачи, её валидацию и выборку,
// хранилища под ней и HTTP-слой над ней.
package tasks

import (
	"bytes"
	"encoding/json"
	"time"
)

// Status это состояние задачи.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid проверяет, что статус известен.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority это важность задачи.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid проверяет, что приоритет известен.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task описывает модель задачи.
//
// Сериализуется как есть и для API, и для файлового хранилища.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	DueAt       *time.Time `json:"due_at"`
}

// CreateTaskRequest это входящий JSON-контракт для создания задачи.
// Title и Description обрезаются до проверки тегов.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Description string     `json:"description" validate:"required,max=500"`
	Status      Status     `json:"status" validate:"required,oneof=pending in_progress completed"`
	Priority    Priority   `json:"priority" validate:"required,oneof=low medium high"`
	DueAt       *time.Time `json:"due_at" validate:"omitempty,future"`
}

// UpdateTaskRequest это частичное обновление: применяются только поля,
// которые есть в JSON.
type UpdateTaskRequest struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	Status      Optional[Status]    `json:"status"`
	Priority    Optional[Priority]  `json:"priority"`
	DueAt       Optional[time.Time] `json:"due_at"`
}

// Empty сообщает, что в запросе нет ни одного поля.
func (r UpdateTaskRequest) Empty() bool {
	return !r.Title.Set && !r.Description.Set && !r.Status.Set && !r.Priority.Set && !r.DueAt.Set
}

// Apply переносит переданные поля в t. Непереданные поля не меняются;
// явный null в due_at очищает срок.
func (r UpdateTaskRequest) Apply(t *Task) {
	if r.Title.Set && !r.Title.Null {
		t.Title = r.Title.Value
	}
	if r.Description.Set && !r.Description.Null {
		t.Description = r.Description.Value
	}
	if r.Status.Set && !r.Status.Null {
		t.Status = r.Status.Value
	}
	if r.Priority.Set && !r.Priority.Null {
		t.Priority = r.Priority.Value
	}
	if r.DueAt.Set {
		if r.DueAt.Null {
			t.DueAt = nil
		} else {
			due := r.DueAt.Value
			t.DueAt = &due
		}
	}
}

// Optional различает в JSON "нет поля", null и значение.
// Set true, если ключ был в теле.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some возвращает заданный не-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null возвращает Optional с явным null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON вызывается только для присутствующих ключей, включая null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// DeleteResult подтверждает удаление.
type DeleteResult struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Title   string `json:"title"`
}
