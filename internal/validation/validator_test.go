package validation

import (
	"testing"

	"capsort/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProjectInput() ProjectInput {
	return ProjectInput{
		Title:   "  Smart Irrigation with LoRa  ",
		Author:  "Kim Lee",
		Year:    2023,
		Field:   "IoT",
		FileURL: "https://files.example.com/papers/smart-irrigation.pdf",
	}
}

func TestValidateProjectInput(t *testing.T) {
	fixClock(t, 2025)

	in := validProjectInput()
	require.NoError(t, ValidateProjectInput(&in))
	assert.Equal(t, "Smart Irrigation with LoRa", in.Title)

	tests := []struct {
		name   string
		mutate func(*ProjectInput)
		field  string
	}{
		{"missing title", func(in *ProjectInput) { in.Title = " " }, "title"},
		{"missing author", func(in *ProjectInput) { in.Author = "" }, "author"},
		{"early year", func(in *ProjectInput) { in.Year = 1850 }, "year"},
		{"future year", func(in *ProjectInput) { in.Year = 2026 }, "year"},
		{"bad url", func(in *ProjectInput) { in.FileURL = "not a url" }, "fileUrl"},
		{"reserved field", func(in *ProjectInput) { in.Field = "ALL" }, "field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validProjectInput()
			tt.mutate(&in)
			assert.Contains(t, fieldNames(t, ValidateProjectInput(&in)), tt.field)
		})
	}
}

func TestValidateProjectInput_Apply(t *testing.T) {
	in := validProjectInput()
	require.NoError(t, ValidateProjectInput(&in))

	var p models.Project
	in.Apply(&p)
	assert.Equal(t, "Kim Lee", p.Author)
	assert.Equal(t, 2023, p.Year)
}

func TestValidateSaveProjectInput(t *testing.T) {
	id := int64(7)
	got, err := ValidateSaveProjectInput(&SaveProjectInput{ProjectID: &id})
	require.NoError(t, err)
	assert.Equal(t, uint(7), got)

	_, err = ValidateSaveProjectInput(&SaveProjectInput{})
	assert.Equal(t, []string{"projectId"}, fieldNames(t, err))

	zero := int64(0)
	_, err = ValidateSaveProjectInput(&SaveProjectInput{ProjectID: &zero})
	assert.Equal(t, []string{"projectId"}, fieldNames(t, err))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42", "id")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"0", "-3", "abc", ""} {
		_, err := ParseID(raw, "id")
		assert.Equal(t, []string{"id"}, fieldNames(t, err), raw)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Abc123", true},
		{"Ab1", false},
		{"abc123", false},
		{"ABC123", false},
		{"Abcdef", false},
	}
	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.ok {
			assert.NoError(t, err, tt.password)
		} else {
			assert.Error(t, err, tt.password)
		}
	}
}

func TestValidateSignup(t *testing.T) {
	in := SignupInput{FullName: " Ana Cruz ", Email: "ana@example.com", Password: "Secret1"}
	require.NoError(t, ValidateSignup(&in))
	assert.Equal(t, "Ana Cruz", in.FullName)

	bad := SignupInput{FullName: "Ana", Email: "not-an-email", Password: "weak"}
	assert.Contains(t, fieldNames(t, ValidateSignup(&bad)), "email")

	weak := SignupInput{FullName: "Ana", Email: "ana@example.com", Password: "weak"}
	assert.Equal(t, []string{"password"}, fieldNames(t, ValidateSignup(&weak)))
}

func TestValidateLogin(t *testing.T) {
	require.NoError(t, ValidateLogin(&LoginInput{Email: " a@b.co ", Password: "x"}))
	assert.Contains(t, fieldNames(t, ValidateLogin(&LoginInput{})), "password")
}
