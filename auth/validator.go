package auth

import (
	"fmt"

	"global-chat/errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// CredentialsRequest is what the login and register forms submit.
type CredentialsRequest struct {
	Username string `validate:"required,notblank"`
	Secret   string `validate:"required,notblank"`
}

// ValidateCredentials rejects blank fields before the credential store is consulted.
func ValidateCredentials(req CredentialsRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrEmptyCredentials, err)
	}
	return nil
}
