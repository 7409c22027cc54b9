package tasks

import (
	"fmt"
	"strings"
)

// Predicate это одно условие Filter. Любой предикат проверяется в памяти;
// SQL-хранилища переводят те же предикаты в WHERE.
type Predicate interface {
	Match(t Task) bool
}

// StatusIs оставляет задачи с точно таким статусом.
type StatusIs Status

func (p StatusIs) Match(t Task) bool { return t.Status == Status(p) }

// PriorityIs оставляет задачи с точно таким приоритетом.
type PriorityIs Priority

func (p PriorityIs) Match(t Task) bool { return t.Priority == Priority(p) }

// TextContains оставляет задачи, у которых title или description содержит
// текст без учёта регистра.
type TextContains string

func (p TextContains) Match(t Task) bool {
	needle := strings.ToLower(string(p))
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// Filter это конъюнкция предикатов. Пустой фильтр пропускает все задачи.
type Filter []Predicate

// Match проверяет t по всем предикатам.
func (f Filter) Match(t Task) bool {
	for _, p := range f {
		if !p.Match(t) {
			return false
		}
	}
	return true
}

// Apply возвращает подходящие задачи, сохраняя порядок.
func (f Filter) Apply(in []Task) []Task {
	out := make([]Task, 0, len(in))
	for _, t := range in {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// sqlDialect описывает, как хранилище записывает параметры и поиск
// подстроки без учёта регистра.
type sqlDialect struct {
	placeholder func(n int) string
	contains    func(column, param string) string
}

var (
	// LIKE в SQLite игнорирует регистр только для ASCII, поэтому обе стороны
	// проходят через Unicode-функцию, которую регистрирует sqlite-хранилище.
	sqliteDialect = sqlDialect{
		placeholder: func(int) string { return "?" },
		contains: func(column, param string) string {
			return fmt.Sprintf(`%[1]s(%[2]s) LIKE %[1]s(%[3]s) ESCAPE '\'`, foldFunction, column, param)
		},
	}
	postgresDialect = sqlDialect{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		contains: func(column, param string) string {
			return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, param)
		},
	}
)

// where собирает WHERE (пустой для пустого f) и аргументы к нему.
func (f Filter) where(d sqlDialect) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}

	conditions := make([]string, 0, len(f))
	args := make([]any, 0, len(f))
	argID := 1

	for _, p := range f {
		switch p := p.(type) {
		case StatusIs:
			conditions = append(conditions, "status = "+d.placeholder(argID))
			args = append(args, string(p))
			argID++
		case PriorityIs:
			conditions = append(conditions, "priority = "+d.placeholder(argID))
			args = append(args, string(p))
			argID++
		case TextContains:
			pattern := "%" + escapeLike(string(p)) + "%"
			conditions = append(conditions, "("+
				d.contains("title", d.placeholder(argID))+" OR "+
				d.contains("description", d.placeholder(argID+1))+")")
			args = append(args, pattern, pattern)
			argID += 2
		default:
			return "", nil, fmt.Errorf("unsupported predicate %T", p)
		}
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
