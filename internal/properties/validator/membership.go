package validator

import (
	"errors"

	"qota/pkg/logger"
	"qota/pkg/model"

	"github.com/go-playground/validator/v10"
)

type MembershipValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMembershipValidator(log *logger.Logger) *MembershipValidator {
	return &MembershipValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *MembershipValidator) Validate(membership *model.Membership) error {
	if err := v.validate.Struct(membership); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			translated := translateValidationErrors(validationErrs)
			v.logger.Warn("Membership validation failed", "error", translated.Error())
			return translated
		}
		return err
	}

	return nil
}
