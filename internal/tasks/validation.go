package tasks

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Правила, общие для тегов структуры и проверки частичного обновления.
const (
	titleRules       = "required,max=100"
	descriptionRules = "required,max=500"
	statusRules      = "required,oneof=pending in_progress completed"
	priorityRules    = "required,oneof=low medium high"
	dueAtRules       = "future"
)

// Validator проверяет входящие данные. Побочных эффектов нет; "сейчас"
// берётся из переданных часов.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator создаёт Validator. nil вместо часов означает time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{
		validate: validator.New(),
		now:      now,
	}

	// В нарушениях показываем JSON-имена полей.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Регистрация падает только на пустом теге или nil-функции.
	_ = v.validate.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(v.now())
	})

	return v
}

// ValidateCreate обрезает и проверяет полный запрос. Возвращает
// нормализованный запрос или *ValidationError со всеми нарушениями.
func (v *Validator) ValidateCreate(req CreateTaskRequest) (CreateTaskRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	// В будущем должно быть именно то значение, которое сохранится.
	if req.DueAt != nil {
		due := normalizeTime(*req.DueAt)
		req.DueAt = &due
	}

	if err := v.validate.Struct(req); err != nil {
		return CreateTaskRequest{}, toValidationError(err, "")
	}
	return req, nil
}

// ValidateUpdate проверяет частичный запрос. Запрос без полей даёт
// ErrEmptyUpdate; переданные пустые значения проверяются как обычные.
func (v *Validator) ValidateUpdate(req UpdateTaskRequest) (UpdateTaskRequest, error) {
	if req.Empty() {
		return UpdateTaskRequest{}, ErrEmptyUpdate
	}

	var violations []Violation

	if req.Title.Set {
		if req.Title.Null {
			violations = append(violations, notNull("title"))
		} else {
			req.Title.Value = strings.TrimSpace(req.Title.Value)
			violations = v.check(violations, "title", req.Title.Value, titleRules)
		}
	}
	if req.Description.Set {
		if req.Description.Null {
			violations = append(violations, notNull("description"))
		} else {
			req.Description.Value = strings.TrimSpace(req.Description.Value)
			violations = v.check(violations, "description", req.Description.Value, descriptionRules)
		}
	}
	if req.Status.Set {
		if req.Status.Null {
			violations = append(violations, notNull("status"))
		} else {
			violations = v.check(violations, "status", string(req.Status.Value), statusRules)
		}
	}
	if req.Priority.Set {
		if req.Priority.Null {
			violations = append(violations, notNull("priority"))
		} else {
			violations = v.check(violations, "priority", string(req.Priority.Value), priorityRules)
		}
	}
	if req.DueAt.Set && !req.DueAt.Null {
		req.DueAt.Value = normalizeTime(req.DueAt.Value)
		violations = v.check(violations, "due_at", req.DueAt.Value, dueAtRules)
	}

	if len(violations) > 0 {
		return UpdateTaskRequest{}, &ValidationError{Violations: violations}
	}
	return req, nil
}

// ValidateListQuery проверяет параметры списка. parsed это нарушения,
// найденные при разборе query string; они возвращаются вместе с остальными.
func (v *Validator) ValidateListQuery(q ListQuery, parsed ...Violation) error {
	var violations []Violation
	if err := v.validate.Struct(q); err != nil {
		var verr *ValidationError
		if !errors.As(toValidationError(err, ""), &verr) {
			return err
		}
		violations = verr.Violations
	}

	violations = append(violations, parsed...)
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func (v *Validator) check(violations []Violation, field string, value any, rules string) []Violation {
	err := v.validate.Var(value, rules)
	if err == nil {
		return violations
	}
	var verr *ValidationError
	if errors.As(toValidationError(err, field), &verr) {
		return append(violations, verr.Violations...)
	}
	return append(violations, Violation{Field: field, Reason: err.Error()})
}

// toValidationError переводит ошибки validator. field задаёт имя поля,
// которого нет у вызовов Var.
func toValidationError(err error, field string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		out.Violations = append(out.Violations, Violation{Field: name, Reason: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "future":
		return "must be in the future"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

func notNull(field string) Violation {
	return Violation{Field: field, Reason: "must not be null"}
}

// normalizeTime отбрасывает точность, которую хранят не все хранилища.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
