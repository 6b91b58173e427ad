package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"capsort/internal/models"
)

// projectQuery is the typed form of the listing query string.
type projectQuery struct {
	Page     *int    `query:"page" validate:"omitempty,min=1"`
	Limit    *int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Year     *int    `query:"year" validate:"omitempty,min=1900,notfuture"`
	YearFrom *int    `query:"yearFrom" validate:"omitempty,min=1900,notfuture"`
	YearTo   *int    `query:"yearTo" validate:"omitempty,min=1900,notfuture"`
	Field    *string `query:"field" validate:"omitempty,min=1,max=50"`
	Search   *string `query:"search" validate:"omitempty,min=1,max=100"`
}

// ParseProjectFilter validates raw listing query parameters. Absent keys use
// defaults; present keys must be well formed. All problems are reported together.
func ParseProjectFilter(raw map[string]string) (models.ProjectFilter, error) {
	var q projectQuery
	var fields []models.FieldError

	ints := []struct {
		key string
		dst **int
	}{
		{"page", &q.Page},
		{"limit", &q.Limit},
		{"year", &q.Year},
		{"yearFrom", &q.YearFrom},
		{"yearTo", &q.YearTo},
	}
	for _, p := range ints {
		v, ok := raw[p.key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			fields = append(fields, models.FieldError{Field: p.key, Message: p.key + " must be an integer"})
			continue
		}
		*p.dst = &n
	}

	for key, dst := range map[string]**string{"field": &q.Field, "search": &q.Search} {
		if v, ok := raw[key]; ok {
			owned := strings.Clone(strings.TrimSpace(v))
			*dst = &owned
		}
	}

	if err := validate.Struct(q); err != nil {
		fields = append(fields, FormatFieldErrors(err)...)
	}

	if q.Year != nil && (q.YearFrom != nil || q.YearTo != nil) {
		fields = append(fields, models.FieldError{Field: "year", Message: "year cannot be combined with yearFrom or yearTo"})
	}
	if q.YearFrom != nil && q.YearTo != nil && *q.YearFrom > *q.YearTo {
		fields = append(fields, models.FieldError{
			Field:   "yearFrom",
			Message: fmt.Sprintf("yearFrom (%d) must not be greater than yearTo (%d)", *q.YearFrom, *q.YearTo),
		})
	}

	if len(fields) > 0 {
		return models.ProjectFilter{}, models.NewFieldValidationError(sortFields(fields)...)
	}

	f := models.ProjectFilter{Year: q.Year, YearFrom: q.YearFrom, YearTo: q.YearTo}
	if q.Page != nil {
		f.Page = *q.Page
	}
	if q.Limit != nil {
		f.Limit = *q.Limit
	}
	if q.Field != nil {
		f.Field = *q.Field
	}
	if q.Search != nil {
		f.Search = *q.Search
	}
	return f.Normalized(), nil
}

var fieldOrder = map[string]int{"page": 0, "limit": 1, "year": 2, "yearFrom": 3, "yearTo": 4, "field": 5, "search": 6}

// sortFields orders errors by query parameter so responses are stable.
func sortFields(fields []models.FieldError) []models.FieldError {
	sort.SliceStable(fields, func(i, j int) bool {
		return fieldOrder[fields[i].Field] < fieldOrder[fields[j].Field]
	})
	return fields
}
