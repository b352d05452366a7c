package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"custodia/pkg/logger"
	"custodia/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	calendarDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockTimeRegex    = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
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

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validator.New()

	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator",
			"error", err,
		)
	}

	log.Info("Schedule validator initialized successfully")

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

// validateCalendarDate accepts only real YYYY-MM-DD dates; "2026-02-30"
// fails even though it matches the shape.
func validateCalendarDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !calendarDateRegex.MatchString(value) {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func validateClockTime(fl validator.FieldLevel) bool {
	return clockTimeRegex.MatchString(fl.Field().String())
}

func (v *ScheduleValidator) Validate(sc *model.Schedule) error {
	if err := v.validate.Struct(sc); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// HH:MM strings compare lexicographically in clock order
	if sc.EndTime <= sc.StartTime {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	if sc.Status == model.StatusApproved && sc.ApprovedAt == nil {
		return ValidationErrors{
			ValidationError{
				Field:   "ApprovedAt",
				Message: "approved schedules must carry an approval timestamp",
			},
		}
	}
	if sc.Status != model.StatusApproved && sc.ApprovedAt != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "ApprovedAt",
				Message: "only approved schedules may carry an approval timestamp",
			},
		}
	}

	return nil
}

func (v *ScheduleValidator) ValidateUpdate(update *model.ScheduleUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartTime != "" && update.EndTime != "" {
		if update.EndTime <= update.StartTime {
			return ValidationErrors{
				ValidationError{
					Field:   "EndTime",
					Message: "end_time must be after start_time",
				},
			}
		}
	}

	return nil
}

func (v *ScheduleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "calendar_date":
			message = fmt.Sprintf("%s must be a valid calendar date in YYYY-MM-DD format", err.Field())
		case "clock_time":
			message = fmt.Sprintf("%s must be a valid time in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
