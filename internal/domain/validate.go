package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	groupchat_errors "groupchat/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its `validate` struct tags and reports failures
// as a *ValidationError keyed by the lower-cased field name.
func Validate(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		fields[strings.ToLower(fe.Field())] = reason
	}
	return groupchat_errors.NewValidationError(entity, fields)
}
