package validation

import (
	"strconv"
	"strings"

	"capsort/internal/models"
)

// ParseID parses a positive integer identifier named name.
func ParseID(raw, name string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || n == 0 {
		return 0, models.NewFieldValidationError(models.FieldError{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return uint(n), nil
}
