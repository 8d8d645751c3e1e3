package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// validate is shared across requests; the validator caches struct metadata,
// so one instance serves the whole process.
var validate = validator.New()

// FormatValidationError flattens validation errors into one readable string.
func FormatValidationError(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field()+" failed on the '"+e.Tag()+"' rule")
	}
	return strings.Join(parts, ", ")
}

// BindAndValidate binds the JSON request body into obj and validates it.
// On any failure it answers 400 and returns false.
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	if err := validate.Struct(obj); err != nil {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return false
	}
	return true
}
