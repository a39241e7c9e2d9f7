package validators

import (
	"docbook/cmd/internal/domain/entity"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Register installs the custom tags used by request structs and reports
// fields by their json name.
func Register(validate *validator.Validate) {
	validate.RegisterTagNameFunc(jsonName)
	_ = validate.RegisterValidation("iso8601", IsIso8601)
	_ = validate.RegisterValidation("isodate", IsIsoDate)
	_ = validate.RegisterValidation("clock", IsClock)
	_ = validate.RegisterValidation("initialstatus", IsInitialStatus)
	_ = validate.RegisterValidation("slotstatus", IsAppointmentStatus)
}

// IsIso8601 accepts RFC3339 instants, which always carry an offset.
func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func IsIsoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

func IsClock(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

// IsInitialStatus allows the statuses a reservation may start in.
func IsInitialStatus(fl validator.FieldLevel) bool {
	switch entity.AppointmentStatus(fl.Field().String()) {
	case entity.StatusPending, entity.StatusConfirmed:
		return true
	}
	return false
}

func IsAppointmentStatus(fl validator.FieldLevel) bool {
	switch entity.AppointmentStatus(fl.Field().String()) {
	case entity.StatusPending, entity.StatusConfirmed, entity.StatusCancelled, entity.StatusCompleted:
		return true
	}
	return false
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
