package validation

import (
	"strings"

	"capsort/internal/models"
)

// ProjectInput is the admin create/update payload.
type ProjectInput struct {
	Title   string `json:"title" validate:"required,max=255"`
	Author  string `json:"author" validate:"required,max=255"`
	Year    int    `json:"year" validate:"required,min=1900,notfuture"`
	Field   string `json:"field" validate:"required,max=50"`
	FileURL string `json:"fileUrl" validate:"required,url,max=2048"`
}

// Normalize trims surrounding whitespace from every text field.
func (in *ProjectInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Field = strings.TrimSpace(in.Field)
	in.FileURL = strings.TrimSpace(in.FileURL)
}

// ValidateProjectInput normalizes and validates in.
func ValidateProjectInput(in *ProjectInput) error {
	in.Normalize()
	if strings.EqualFold(in.Field, models.FieldAll) {
		return models.NewFieldValidationError(models.FieldError{
			Field:   "field",
			Message: "field cannot be \"" + models.FieldAll + "\"",
		})
	}
	return Struct(in)
}

// Apply copies the input onto p.
func (in *ProjectInput) Apply(p *models.Project) {
	p.Title = in.Title
	p.Author = in.Author
	p.Year = in.Year
	p.Field = in.Field
	p.FileURL = in.FileURL
}

// SaveProjectInput is the body of a save request.
type SaveProjectInput struct {
	ProjectID *int64 `json:"projectId" validate:"required,min=1"`
}

// ValidateSaveProjectInput checks the body of a save request and returns the project ID.
func ValidateSaveProjectInput(in *SaveProjectInput) (uint, error) {
	if err := Struct(in); err != nil {
		return 0, err
	}
	return uint(*in.ProjectID), nil
}
