package tasks

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
)

// sqliteTimeLayout фиксированной ширины: порядок строк совпадает с порядком времени.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

const sqliteColumns = `id, title, description, status, priority, created_at, due_at`

// foldFunction приводит текст к нижнему регистру так же, как TextContains.Match.
const foldFunction = "unicode_lower"

func init() {
	// Функция видна во всех соединениях, открытых после регистрации.
	sqlite.MustRegisterDeterministicScalarFunction(foldFunction, 1, foldText)
}

func foldText(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// SQLiteStore реализует Repository поверх database/sql и драйвера sqlite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Repository = (*SQLiteStore)(nil)

// NewSQLiteStore оборачивает открытое соединение с уже применённой схемой.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Find(ctx context.Context, id int64) (Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanSQLiteTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("find task %d: %w", id, err)
	}
	return t, nil
}

func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Task, error) {
	where, args, err := f.where(sqliteDialect)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + sqliteColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) Insert(ctx context.Context, t Task) (Task, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, priority, created_at, due_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, string(t.Status), string(t.Priority),
		formatSQLiteTime(t.CreatedAt), nullableSQLiteTime(t.DueAt),
	)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	return cloneTask(t), nil
}

func (s *SQLiteStore) Update(ctx context.Context, t Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_at = ?
		WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority),
		nullableSQLiteTime(t.DueAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return checkAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (Task, error) {
	var (
		t         Task
		status    string
		priority  string
		createdAt string
		dueAt     sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &createdAt, &dueAt); err != nil {
		return Task{}, err
	}
	t.Status = Status(status)
	t.Priority = Priority(priority)
	if err := checkEnums(t); err != nil {
		return Task{}, err
	}

	created, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return Task{}, fmt.Errorf("invalid created_at: %w", err)
	}
	t.CreatedAt = created

	if dueAt.Valid {
		due, err := time.Parse(sqliteTimeLayout, dueAt.String)
		if err != nil {
			return Task{}, fmt.Errorf("invalid due_at: %w", err)
		}
		t.DueAt = &due
	}
	return t, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func nullableSQLiteTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatSQLiteTime(*t), Valid: true}
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
