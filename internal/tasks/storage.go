package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// fileSnapshot описывает формат файла. NextID хранится, чтобы id удалённых
// задач не выдавались повторно.
type fileSnapshot struct {
	NextID int64  `json:"next_id"`
	Tasks  []Task `json:"tasks"`
}

// FileStore держит задачи в памяти и зеркалирует каждую запись в JSON-файл.
//
// Запись сначала сохраняет новый снимок на диск и только потом подменяет
// состояние в памяти: неудачное сохранение ничего не меняет.
// Пустой filename означает хранение только в памяти.
type FileStore struct {
	mu       sync.RWMutex
	filename string
	tasks    []Task
	nextID   int64
}

var _ Repository = (*FileStore)(nil)

// NewFileStore загружает filename (нет файла или он пустой: задач нет).
func NewFileStore(ctx context.Context, filename string) (*FileStore, error) {
	s := &FileStore{filename: filename, nextID: 1}
	if filename == "" {
		return s, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	s.tasks = snap.Tasks
	s.nextID = max(snap.NextID, calcNextID(snap.Tasks))
	return s, nil
}

func (s *FileStore) Find(ctx context.Context, id int64) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx == -1 {
		return Task{}, ErrNotFound
	}
	return cloneTask(s.tasks[idx]), nil
}

func (s *FileStore) List(ctx context.Context, f Filter) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (s *FileStore) Insert(ctx context.Context, t Task) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := cloneTask(t)
	created.ID = s.nextID

	candidate := make([]Task, 0, len(s.tasks)+1)
	candidate = append(candidate, s.tasks...)
	candidate = append(candidate, created)

	if err := s.save(candidate, s.nextID+1); err != nil {
		return Task{}, err
	}

	s.tasks = candidate
	s.nextID++
	return cloneTask(created), nil
}

func (s *FileStore) Update(ctx context.Context, t Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(t.ID)
	if idx == -1 {
		return ErrNotFound
	}

	candidate := make([]Task, len(s.tasks))
	copy(candidate, s.tasks)
	candidate[idx] = cloneTask(t)

	if err := s.save(candidate, s.nextID); err != nil {
		return err
	}

	s.tasks = candidate
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		return ErrNotFound
	}

	candidate := make([]Task, 0, len(s.tasks)-1)
	candidate = append(candidate, s.tasks[:idx]...)
	candidate = append(candidate, s.tasks[idx+1:]...)

	if err := s.save(candidate, s.nextID); err != nil {
		return err
	}

	s.tasks = candidate
	return nil
}

// indexOf вызывается под mu.
func (s *FileStore) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *FileStore) save(tasks []Task, nextID int64) error {
	if s.filename == "" {
		return nil
	}

	data, err := json.MarshalIndent(fileSnapshot{NextID: nextID, Tasks: tasks}, "", "   ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить файл наполовину.
	tmp := s.filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	if err := os.Rename(tmp, s.filename); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace tasks file: %w", err)
	}
	return nil
}

func (s *FileStore) load() (fileSnapshot, error) {
	data, err := os.ReadFile(s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			// Первый запуск.
			return fileSnapshot{}, nil
		}
		return fileSnapshot{}, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return fileSnapshot{}, nil
	}

	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fileSnapshot{}, err
	}
	for _, t := range snap.Tasks {
		if err := checkEnums(t); err != nil {
			return fileSnapshot{}, fmt.Errorf("task %d: %w", t.ID, err)
		}
	}
	return snap, nil
}

// calcNextID возвращает maxID+1.
func calcNextID(ts []Task) int64 {
	var maxID int64
	for _, t := range ts {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

// checkEnums отклоняет строки с неизвестным status или priority.
func checkEnums(t Task) error {
	if !t.Status.Valid() {
		return fmt.Errorf("invalid status in store: %q", t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("invalid priority in store: %q", t.Priority)
	}
	return nil
}

// cloneTask копирует due_at, чтобы вызывающий не мог изменить хранимые данные.
func cloneTask(t Task) Task {
	if t.DueAt != nil {
		due := *t.DueAt
		t.DueAt = &due
	}
	return t
}
