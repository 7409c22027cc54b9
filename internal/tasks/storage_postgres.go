package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresColumns = `id, title, description, status, priority, created_at, due_at`

// PostgresStore реализует Repository поверх пула соединений pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresStore)(nil)

// NewPostgresStore оборачивает пул с уже применённой схемой.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Find(ctx context.Context, id int64) (Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPostgresTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("find task %d: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Task, error) {
	where, args, err := f.where(postgresDialect)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + postgresColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC, id ASC`
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanPostgresTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) Insert(ctx context.Context, t Task) (Task, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, created_at, due_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.CreatedAt, t.DueAt,
	).Scan(&t.ID)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return cloneTask(t), nil
}

func (s *PostgresStore) Update(ctx context.Context, t Task) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4, due_at = $5
		WHERE id = $6`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.DueAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgresTask(row pgx.Row) (Task, error) {
	var (
		t        Task
		status   string
		priority string
		dueAt    *time.Time
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.CreatedAt, &dueAt); err != nil {
		return Task{}, err
	}
	t.Status = Status(status)
	t.Priority = Priority(priority)
	if err := checkEnums(t); err != nil {
		return Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	if dueAt != nil {
		due := dueAt.UTC()
		t.DueAt = &due
	}
	return t, nil
}
