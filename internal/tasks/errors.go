package tasks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound возвращает Repository, если строки с таким id нет.
	ErrNotFound = errors.New("task not found")

	// ErrEmptyUpdate: в запросе на обновление нет ни одного поля.
	ErrEmptyUpdate = errors.New("no fields to update")
)

// Violation описывает одно отклонённое поле.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError содержит все нарушения из запроса.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError: задачи с таким id нет.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// BadRequestError: запрос некорректен по структуре.
type BadRequestError struct {
	Reason string
	Err    error
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

func (e *BadRequestError) Unwrap() error {
	return e.Err
}

// StoreError оборачивает ошибку хранилища. Err клиенту не показываем.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
