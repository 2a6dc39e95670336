package serverutils

import (
	"errors"

	"realtime-chat-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct checks the `validate` tags on a request DTO and reports
// the first violation as an invalid-argument error.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.InvalidArgument("invalid field '" + fe.Field() + "' (rule: " + fe.Tag() + ")")
	}
	return apperror.InvalidArgument("invalid request payload")
}
