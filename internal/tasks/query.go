package tasks

import (
	"context"
	"net/url"
	"sort"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 5
	MaxPerPage     = 100
)

// ListQuery хранит фильтры коллекции и запрошенную страницу.
type ListQuery struct {
	Status   Status   `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Search   string   `json:"search" validate:"omitempty,max=100"`
	Page     int      `json:"page" validate:"min=1"`
	PerPage  int      `json:"per_page" validate:"min=1,max=100"`
}

// ParseListQuery читает параметры query string. Без page/per_page берутся
// значения по умолчанию. Не-целые значения попадают в нарушения, а в запросе
// остаётся значение по умолчанию, чтобы остальное тоже можно было проверить.
func ParseListQuery(values url.Values) (ListQuery, []Violation) {
	q := ListQuery{
		Status:   Status(values.Get("status")),
		Priority: Priority(values.Get("priority")),
		Search:   values.Get("search"),
		Page:     DefaultPage,
		PerPage:  DefaultPerPage,
	}

	var violations []Violation
	if raw := values.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil {
			violations = append(violations, Violation{Field: "page", Reason: "must be an integer"})
		} else {
			q.Page = n
		}
	}
	if raw := values.Get("per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil {
			violations = append(violations, Violation{Field: "per_page", Reason: "must be an integer"})
		} else {
			q.PerPage = n
		}
	}
	return q, violations
}

// Filter переводит запрос в предикаты в порядке status, priority, search.
func (q ListQuery) Filter() Filter {
	var f Filter
	if q.Status != "" {
		f = append(f, StatusIs(q.Status))
	}
	if q.Priority != "" {
		f = append(f, PriorityIs(q.Priority))
	}
	if q.Search != "" {
		f = append(f, TextContains(q.Search))
	}
	return f
}

// Pagination описывает положение страницы в выборке.
type Pagination struct {
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// Page это конверт ответа списка.
type Page struct {
	Items      []Task     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// QueryBuilder выполняет ListQuery над Repository.
type QueryBuilder struct {
	repo Repository
}

func NewQueryBuilder(repo Repository) *QueryBuilder {
	return &QueryBuilder{repo: repo}
}

// Run достаёт все подходящие строки и возвращает нужную страницу.
// Ошибки хранилища не повторяются.
func (b *QueryBuilder) Run(ctx context.Context, q ListQuery) (Page, error) {
	f := q.Filter()
	rows, err := b.repo.List(ctx, f)
	if err != nil {
		return Page{}, &StoreError{Op: "list tasks", Err: err}
	}

	// Хранилище уже применило фильтр; повторная проверка в памяти делает
	// результат одинаковым для всех хранилищ.
	return Paginate(f.Apply(rows), q.Page, q.PerPage), nil
}

// Paginate сортирует строки от новых к старым (при равенстве по id) и
// вырезает нужную страницу. page зажимается в [1, total_pages]; у пустой
// выборки одна страница. perPage вне [1, MaxPerPage] заменяется на значение
// по умолчанию или на максимум.
func Paginate(rows []Task, page, perPage int) Page {
	switch {
	case perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}

	total := len(rows)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)

	sorted := make([]Task, total)
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	items := make([]Task, end-start)
	copy(items, sorted[start:end])

	return Page{
		Items: items,
		Pagination: Pagination{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: page,
			PerPage:     perPage,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}
}
