package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"riff-be/internal/constant"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator exposes the shared instance for callers that validate outside HTTP handlers.
func Validator() *validator.Validate {
	return validate
}

// ValidateRequest validates req and returns a 400 AppError listing the failing fields.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError(fiber.StatusBadRequest, constant.ErrCodeInvalidPayload, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return NewAppError(fiber.StatusBadRequest, constant.ErrCodeInvalidPayload, strings.Join(msgs, "; "))
}
