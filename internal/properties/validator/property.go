package validator

import (
	"errors"
	"fmt"

	"qota/pkg/logger"
	"qota/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type PropertyValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPropertyValidator(log *logger.Logger) *PropertyValidator {
	return &PropertyValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *PropertyValidator) Validate(property *model.Property) error {
	if err := v.validate.Struct(property); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			translated := translateValidationErrors(validationErrs)
			v.logger.Warn("Property validation failed", "error", translated.Error())
			return translated
		}
		return err
	}

	return v.validatePolicy(property.Policy)
}

// validatePolicy enforces the cross-field rules the struct tags cannot
// express on their own.
func (v *PropertyValidator) validatePolicy(policy model.PropertyPolicy) error {
	var errs ValidationErrors

	if policy.MaxStayDays < policy.MinStayDays {
		errs = append(errs, ValidationError{
			Field:   "Policy.MaxStayDays",
			Message: fmt.Sprintf("must be at least MinStayDays (%d)", policy.MinStayDays),
		})
	}
	if policy.MaxActiveReservationsPerMember != nil && *policy.MaxActiveReservationsPerMember < 1 {
		errs = append(errs, ValidationError{
			Field:   "Policy.MaxActiveReservationsPerMember",
			Message: "must be at least 1 when set",
		})
	}
	if policy.MaxHolidaysPerMember != nil && *policy.MaxHolidaysPerMember < 0 {
		errs = append(errs, ValidationError{
			Field:   "Policy.MaxHolidaysPerMember",
			Message: "cannot be negative",
		})
	}

	if len(errs) > 0 {
		v.logger.Warn("Property policy validation failed", "error", errs.Error())
		return errs
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		var message string

		switch err.Tag() {
		case "required":
			message = "is required"
		case "min":
			message = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			message = fmt.Sprintf("must be at most %s", err.Param())
		case "mongodb":
			message = "must be a valid object ID"
		case "timezone":
			message = "must be a valid IANA timezone"
		case "e164":
			message = "must be a valid E.164 phone number"
		case "oneof":
			message = fmt.Sprintf("must be one of: %s", err.Param())
		case "gtefield":
			message = fmt.Sprintf("must be greater than or equal to %s", err.Param())
		default:
			message = fmt.Sprintf("failed validation for tag '%s'", err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
