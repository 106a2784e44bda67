package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"qota/internal/reservations/availability"
	reservationserrors "qota/internal/reservations/errors"
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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks the structural shape of a reservation. Stay-length
// policy is checked separately by ValidateStay, overlap and balance by
// the service layer.
func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

// ValidateStay checks a candidate date range against the property
// policy. Errors wrap the domain sentinels so callers can map them to
// specific user-facing messages. Ordering is checked first, then the
// night count against the policy bounds.
func (v *ReservationValidator) ValidateStay(policy model.PropertyPolicy, start, end time.Time) error {
	if !availability.DayStart(end).After(availability.DayStart(start)) {
		return fmt.Errorf("%w: got [%s, %s)",
			reservationserrors.ErrInvalidRange,
			start.Format(time.DateOnly),
			end.Format(time.DateOnly),
		)
	}

	nights := availability.Nights(start, end)
	if nights < policy.MinStayDays {
		return fmt.Errorf("%w: %d night(s) requested, minimum is %d",
			reservationserrors.ErrStayTooShort, nights, policy.MinStayDays)
	}
	if nights > policy.MaxStayDays {
		return fmt.Errorf("%w: %d night(s) requested, maximum is %d",
			reservationserrors.ErrStayTooLong, nights, policy.MaxStayDays)
	}

	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
