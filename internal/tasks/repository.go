package tasks

import "context"

// Repository это хранилище задач.
//
// Find, Update и Delete возвращают ErrNotFound (возможно обёрнутый) для
// неизвестных id. Каждая запись атомарна: при ошибке состояние не меняется.
type Repository interface {
	Find(ctx context.Context, id int64) (Task, error)
	List(ctx context.Context, f Filter) ([]Task, error)
	// Insert сохраняет t под новым id и возвращает сохранённую задачу.
	Insert(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, t Task) error
	Delete(ctx context.Context, id int64) error
}
