package tasks

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate normalizes fields and checks them at the input boundary
func Validate(fields Fields) (Fields, error) {
	fields = fields.Normalize()

	err := validate.Struct(fields)
	if err == nil {
		return fields, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fields, &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fields, &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s is required", fe.Field())}
	case "max":
		return fields, &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())}
	case "oneof":
		return fields, &ValidationError{Field: fe.Field(), Message: "Status must be one of To Do, In Progress, Done"}
	}
	return fields, &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s is invalid", fe.Field())}
}
