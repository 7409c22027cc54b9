package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func validCreate() CreateTaskRequest {
	return CreateTaskRequest{
		Title:       "Buy milk",
		Description: "2%",
		Status:      StatusPending,
		Priority:    PriorityLow,
	}
}

func violationFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestValidateCreate_TrimsTextFields(t *testing.T) {
	v := NewValidator(fixedClock)

	req := validCreate()
	req.Title = "  Buy milk \n"
	req.Description = "\t2%  "

	got, err := v.ValidateCreate(req)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2%", got.Description)
}

func TestValidateCreate_Rejections(t *testing.T) {
	past := fixedNow.Add(-time.Minute)
	now := fixedNow

	tests := []struct {
		name   string
		mutate func(*CreateTaskRequest)
		field  string
	}{
		{"blank title", func(r *CreateTaskRequest) { r.Title = "   " }, "title"},
		{"title too long", func(r *CreateTaskRequest) { r.Title = strings.Repeat("a", 101) }, "title"},
		{"blank description", func(r *CreateTaskRequest) { r.Description = "\n\t" }, "description"},
		{"description too long", func(r *CreateTaskRequest) { r.Description = strings.Repeat("d", 501) }, "description"},
		{"unknown status", func(r *CreateTaskRequest) { r.Status = "done" }, "status"},
		{"status wrong case", func(r *CreateTaskRequest) { r.Status = "Pending" }, "status"},
		{"missing status", func(r *CreateTaskRequest) { r.Status = "" }, "status"},
		{"unknown priority", func(r *CreateTaskRequest) { r.Priority = "urgent" }, "priority"},
		{"due in the past", func(r *CreateTaskRequest) { r.DueAt = &past }, "due_at"},
		{"due exactly now", func(r *CreateTaskRequest) { r.DueAt = &now }, "due_at"},
	}

	v := NewValidator(fixedClock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)

			_, err := v.ValidateCreate(req)
			assert.Equal(t, []string{tt.field}, violationFields(t, err))
		})
	}
}

func TestValidateCreate_LengthCountsCharacters(t *testing.T) {
	v := NewValidator(fixedClock)

	req := validCreate()
	req.Title = strings.Repeat("é", 100)

	_, err := v.ValidateCreate(req)
	assert.NoError(t, err)
}

func TestValidateCreate_CollectsAllViolations(t *testing.T) {
	v := NewValidator(fixedClock)
	past := fixedNow.Add(-time.Hour)

	_, err := v.ValidateCreate(CreateTaskRequest{
		Title:    " ",
		Status:   "nope",
		Priority: "nope",
		DueAt:    &past,
	})

	assert.Equal(t,
		[]string{"title", "description", "status", "priority", "due_at"},
		violationFields(t, err))
}

func TestValidateDueDate_JudgedAfterTruncation(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := base.Add(500 * time.Nanosecond)
	v := NewValidator(func() time.Time { return now })

	// Later than now, but the stored microsecond value is not.
	due := now.Add(100 * time.Nanosecond)

	req := validCreate()
	req.DueAt = &due
	_, err := v.ValidateCreate(req)
	assert.Equal(t, []string{"due_at"}, violationFields(t, err))

	_, err = v.ValidateUpdate(UpdateTaskRequest{DueAt: Some(due)})
	assert.Equal(t, []string{"due_at"}, violationFields(t, err))

	later := base.Add(time.Microsecond)
	req.DueAt = &later
	got, err := v.ValidateCreate(req)
	require.NoError(t, err)
	assert.True(t, got.DueAt.After(now))
}

func TestValidateCreate_FutureDueDateNormalized(t *testing.T) {
	v := NewValidator(fixedClock)
	loc := time.FixedZone("UTC+3", 3*60*60)
	due := fixedNow.Add(24*time.Hour + 1500*time.Nanosecond).In(loc)

	req := validCreate()
	req.DueAt = &due

	got, err := v.ValidateCreate(req)
	require.NoError(t, err)
	require.NotNil(t, got.DueAt)
	assert.Equal(t, time.UTC, got.DueAt.Location())
	assert.True(t, got.DueAt.Equal(fixedNow.Add(24*time.Hour+time.Microsecond)))
}

func TestValidateUpdate_Empty(t *testing.T) {
	v := NewValidator(fixedClock)

	_, err := v.ValidateUpdate(UpdateTaskRequest{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestValidateUpdate_FalsyValuesAreValidatedNotTreatedAsEmpty(t *testing.T) {
	v := NewValidator(fixedClock)

	_, err := v.ValidateUpdate(UpdateTaskRequest{Title: Some("")})
	assert.NotErrorIs(t, err, ErrEmptyUpdate)
	assert.Equal(t, []string{"title"}, violationFields(t, err))
}

func TestValidateUpdate_NullFields(t *testing.T) {
	v := NewValidator(fixedClock)

	_, err := v.ValidateUpdate(UpdateTaskRequest{
		Title:       Null[string](),
		Description: Null[string](),
		Status:      Null[Status](),
		Priority:    Null[Priority](),
	})
	assert.Equal(t, []string{"title", "description", "status", "priority"}, violationFields(t, err))

	got, err := v.ValidateUpdate(UpdateTaskRequest{DueAt: Null[time.Time]()})
	require.NoError(t, err)
	assert.True(t, got.DueAt.Set)
	assert.True(t, got.DueAt.Null)
}

func TestValidateUpdate_NormalizesPresentFields(t *testing.T) {
	v := NewValidator(fixedClock)

	got, err := v.ValidateUpdate(UpdateTaskRequest{
		Title:  Some("  New title "),
		Status: Some(StatusCompleted),
		DueAt:  Some(fixedNow.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title.Value)
	assert.Equal(t, StatusCompleted, got.Status.Value)
	assert.False(t, got.Description.Set)
}

func TestValidateUpdate_Rejections(t *testing.T) {
	v := NewValidator(fixedClock)

	_, err := v.ValidateUpdate(UpdateTaskRequest{
		Title:       Some(strings.Repeat("x", 101)),
		Description: Some("   "),
		Status:      Some(Status("archived")),
		Priority:    Some(Priority("HIGH")),
		DueAt:       Some(fixedNow),
	})
	assert.Equal(t,
		[]string{"title", "description", "status", "priority", "due_at"},
		violationFields(t, err))
}

func TestValidateListQuery(t *testing.T) {
	v := NewValidator(fixedClock)

	tests := []struct {
		name   string
		q      ListQuery
		fields []string
	}{
		{"defaults", ListQuery{Page: 1, PerPage: 5}, nil},
		{"all filters", ListQuery{Status: StatusInProgress, Priority: PriorityHigh, Search: "milk", Page: 3, PerPage: 100}, nil},
		{"bad status", ListQuery{Status: "open", Page: 1, PerPage: 5}, []string{"status"}},
		{"bad priority", ListQuery{Priority: "urgent", Page: 1, PerPage: 5}, []string{"priority"}},
		{"search too long", ListQuery{Search: strings.Repeat("s", 101), Page: 1, PerPage: 5}, []string{"search"}},
		{"page zero", ListQuery{Page: 0, PerPage: 5}, []string{"page"}},
		{"per_page too big", ListQuery{Page: 1, PerPage: 101}, []string{"per_page"}},
		{"per_page zero", ListQuery{Page: 1, PerPage: 0}, []string{"per_page"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateListQuery(tt.q)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.fields, violationFields(t, err))
		})
	}
}

func TestValidateListQuery_MergesParseViolations(t *testing.T) {
	v := NewValidator(fixedClock)

	err := v.ValidateListQuery(ListQuery{Status: "bogus", Page: 1, PerPage: 5},
		Violation{Field: "page", Reason: "must be an integer"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Violation{
		{Field: "status", Reason: "must be one of: pending, in_progress, completed"},
		{Field: "page", Reason: "must be an integer"},
	}, verr.Violations)

	err = v.ValidateListQuery(ListQuery{Page: 1, PerPage: 5},
		Violation{Field: "per_page", Reason: "must be an integer"})
	assert.Equal(t, []string{"per_page"}, violationFields(t, err))
}

func TestViolationReasons(t *testing.T) {
	v := NewValidator(fixedClock)

	_, err := v.ValidateCreate(CreateTaskRequest{
		Title:       strings.Repeat("a", 101),
		Description: "ok",
		Status:      "x",
		Priority:    PriorityLow,
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Violation{
		{Field: "title", Reason: "must be at most 100 characters"},
		{Field: "status", Reason: "must be one of: pending, in_progress, completed"},
	}, verr.Violations)
}
