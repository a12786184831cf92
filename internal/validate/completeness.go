// Package validate decides which extracted rows count as complete.
package validate

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"twc-crawler/internal/models"
)

// Completeness wraps a validator instance checking the `validate` tags
// on models.Product.
type Completeness struct {
	v *validator.Validate
}

// New returns a ready to use completeness checker.
func New() *Completeness {
	return &Completeness{v: validator.New()}
}

// Check reports whether every required column carries real data, i.e.
// is neither empty nor the "N/A" placeholder. Product Line Name is the
// one column allowed to stay empty. On failure the CSV column name of
// the first missing field is returned, fields are validated in column
// order.
func (c *Completeness) Check(p models.Product) (bool, string) {
	err := c.v.Struct(p)
	if err == nil {
		return true, ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].StructField()
		if col, ok := models.ColumnForField[field]; ok {
			return false, col
		}
		return false, field
	}
	return false, "unknown"
}
