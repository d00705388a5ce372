package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Per-tag messages for the validation tags the request types use.
var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "is too short",
	"max":      "is too long",
	"gt":       "must be a positive number",
	"gte":      "cannot be negative",
	"datetime": "must be a date in YYYY-MM-DD format",
	"oneof":    "is not one of the accepted values",
}

// validationDetails converts validator errors into one field/message
// pair per failed rule.
func validationDetails(err error) []map[string]string {
	details := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return details
	}
	for _, e := range validationErr {
		msg, ok := tagMessages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s validation", e.Tag())
		}
		details = append(details, map[string]string{e.Field(): msg})
	}
	return details
}
