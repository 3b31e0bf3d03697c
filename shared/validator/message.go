package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// varField names the subject of ValidateVar failures, which have no struct field.
const varField = "value"

var messages = map[string]string{
	"required":    "{field} is required",
	"email":       "{field} must be a valid email address",
	"uuid":        "{field} must be a valid UUID",
	"oneof":       "{field} must be one of {param}",
	"gte":         "{field} must be greater than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"max":         "{field} must be less than or equal to {param}",
	"nefield":     "{field} must differ from {param}",
	"naivelocal":  "{field} must be a local date-time like 2024-06-15T14:00",
	"clocktime":   "{field} must be a clock time like 18:30",
	"datekey":     "{field} must be a date like 2024-06-15",
	"timezone":    "{field} must be an IANA timezone such as America/New_York",
	"rrule":       "{field} must be a valid recurrence rule",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must be at most {param} MB",
}

// lengthMessages replace min and max on strings and slices, where the bound is a length.
var lengthMessages = map[string]string{
	"min": "{field} must be at least {param} characters",
	"max": "{field} must be at most {param} characters",
}

// message renders every failed rule, in field order, joined with "; ".
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	rendered := make([]string, 0, len(fieldErrors))

	for _, fieldErr := range fieldErrors {
		template, ok := templateFor(fieldErr)
		if !ok {
			rendered = append(rendered, fieldErr.Error())

			continue
		}

		field := fieldErr.Field()
		if field == "" {
			field = varField
		}

		rendered = append(rendered, strings.NewReplacer("{field}", field, "{param}", fieldErr.Param()).Replace(template))
	}

	return strings.Join(rendered, "; ")
}

func templateFor(fieldErr val.FieldError) (string, bool) {
	switch fieldErr.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		if template, ok := lengthMessages[fieldErr.Tag()]; ok {
			return template, true
		}
	}

	template, ok := messages[fieldErr.Tag()]

	return template, ok
}
