package validators

import (
	"fmt"
	"net/http"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator wires go-playground/validator into Echo as the request
// validator. Requests are validated once at the boundary; handlers assume
// well-typed input afterwards.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator creates the Echo request validator
func NewValidator() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate implements echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Errorf("%w: %s", models.ErrValidation, err.Error()).Error())
	}
	return nil
}
