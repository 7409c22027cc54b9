package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service это бизнес-слой между HTTP и хранилищем.
// Своего состояния нет: каждое чтение идёт в репозиторий.
type Service struct {
	repo     Repository
	query    *QueryBuilder
	validate *Validator
	now      func() time.Time
	logger   *slog.Logger
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет time.Now для created_at и проверки due_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger задаёт логгер для записей и ошибок хранилища.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.query = NewQueryBuilder(repo)
	s.validate = NewValidator(s.now)
	return s
}

// ListTasks возвращает одну страницу задач по q.
func (s *Service) ListTasks(ctx context.Context, q ListQuery) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if err := s.validate.ValidateListQuery(q); err != nil {
		return Page{}, err
	}

	page, err := s.query.Run(ctx, q)
	if err != nil {
		s.logStoreError(ctx, "list", 0, err)
		return Page{}, err
	}
	return page, nil
}

// GetTask возвращает задачу по id.
func (s *Service) GetTask(ctx context.Context, id int64) (Task, error) {
	if err := checkID(id); err != nil {
		return Task{}, err
	}

	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return Task{}, s.classify(ctx, "get task", id, err)
	}
	return t, nil
}

// CreateTask проверяет req и сохраняет новую задачу с текущим временем.
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	valid, err := s.validate.ValidateCreate(req)
	if err != nil {
		return Task{}, err
	}

	created, err := s.repo.Insert(ctx, Task{
		Title:       valid.Title,
		Description: valid.Description,
		Status:      valid.Status,
		Priority:    valid.Priority,
		CreatedAt:   normalizeTime(s.now()),
		DueAt:       valid.DueAt,
	})
	if err != nil {
		return Task{}, s.classify(ctx, "create task", 0, err)
	}

	s.logger.InfoContext(ctx, "task created", "id", created.ID)
	return created, nil
}

// UpdateTask применяет переданные поля к существующей задаче.
// Запрос проверяется до обращения к хранилищу.
func (s *Service) UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) (Task, error) {
	if err := checkID(id); err != nil {
		return Task{}, err
	}

	patch, err := s.validate.ValidateUpdate(req)
	if err != nil {
		if errors.Is(err, ErrEmptyUpdate) {
			return Task{}, &BadRequestError{Reason: err.Error(), Err: err}
		}
		return Task{}, err
	}

	current, err := s.repo.Find(ctx, id)
	if err != nil {
		return Task{}, s.classify(ctx, "update task", id, err)
	}

	updated := cloneTask(current)
	patch.Apply(&updated)

	if err := s.repo.Update(ctx, updated); err != nil {
		return Task{}, s.classify(ctx, "update task", id, err)
	}

	s.logger.InfoContext(ctx, "task updated", "id", id)
	return updated, nil
}

// DeleteTask удаляет задачу окончательно.
func (s *Service) DeleteTask(ctx context.Context, id int64) (DeleteResult, error) {
	if err := checkID(id); err != nil {
		return DeleteResult{}, err
	}

	current, err := s.repo.Find(ctx, id)
	if err != nil {
		return DeleteResult{}, s.classify(ctx, "delete task", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return DeleteResult{}, s.classify(ctx, "delete task", id, err)
	}

	s.logger.InfoContext(ctx, "task deleted", "id", id)
	return DeleteResult{
		Message: "task deleted",
		ID:      current.ID,
		Title:   current.Title,
	}, nil
}

// classify превращает ошибки репозитория в NotFoundError или StoreError.
// Ошибки контекста остаются доступны через Unwrap.
func (s *Service) classify(ctx context.Context, op string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	s.logStoreError(ctx, op, id, err)
	return &StoreError{Op: op, Err: err}
}

func (s *Service) logStoreError(ctx context.Context, op string, id int64, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.WarnContext(ctx, "store call interrupted", "op", op, "id", id, "error", err)
		return
	}
	s.logger.ErrorContext(ctx, "store failure", "op", op, "id", id, "error", err)
}

func checkID(id int64) error {
	if id <= 0 {
		return &BadRequestError{Reason: "id must be a positive integer"}
	}
	return nil
}
