package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Kind tells callers how to react to a failure: fix the input, pick
// another slot, give up, or retry later.
type Kind string

const (
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindConflict           Kind = "CONFLICT"
	KindNotFound           Kind = "NOT_FOUND"
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindInternal           Kind = "INTERNAL"
)

type ErrorResponse interface {
	error
	Code() int
	Kind() Kind
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type apiError struct {
	Status  int          `json:"code"`
	ErrKind Kind         `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *apiError) Error() string { return e.Message }
func (e *apiError) Code() int     { return e.Status }
func (e *apiError) Kind() Kind    { return e.ErrKind }

func New(code int, kind Kind, message string) ErrorResponse {
	return &apiError{Status: code, ErrKind: kind, Message: message}
}

// NewSimple derives the kind from the status code.
func NewSimple(code int, message string) ErrorResponse {
	return New(code, kindOf(code), message)
}

func NewMissingParamError(name string) ErrorResponse {
	return New(http.StatusBadRequest, KindInvalidInput, fmt.Sprintf("Missing required parameter '%s'", name))
}

func NewInvalidParamTypeError(name, typ string) ErrorResponse {
	return New(http.StatusBadRequest, KindInvalidInput, fmt.Sprintf("Parameter '%s' must be of type %s", name, typ))
}

var (
	MalformedBodyError      = New(http.StatusBadRequest, KindInvalidInput, "Malformed request body")
	InvalidDatetimeError    = New(http.StatusBadRequest, KindInvalidInput, "Datetime must be an RFC3339 instant")
	InvalidDateError        = New(http.StatusBadRequest, KindInvalidInput, "Date must be formatted as YYYY-MM-DD")
	InvalidTransitionError  = New(http.StatusBadRequest, KindInvalidInput, "Appointment cannot move to the requested status")
	InvalidAuthTokenError   = New(http.StatusUnauthorized, KindUnauthorized, "Missing or invalid authorization token")
	ForbiddenError          = New(http.StatusForbidden, KindForbidden, "Not allowed to manage this resource")
	NotFoundError           = New(http.StatusNotFound, KindNotFound, "Resource not found")
	DoctorNotFoundError     = New(http.StatusNotFound, KindNotFound, "Doctor not found")
	SlotNotFoundError       = New(http.StatusNotFound, KindNotFound, "Slot not found")
	SlotUnavailableError    = New(http.StatusConflict, KindConflict, "Selected time is no longer available, please pick another time")
	SlotExistsError         = New(http.StatusConflict, KindConflict, "Slot already exists for this doctor and time")
	SlotBookedError         = New(http.StatusConflict, KindConflict, "Booked slots cannot be deleted")
	StaleStatusError        = New(http.StatusConflict, KindConflict, "Appointment was updated by someone else, reload and retry")
	StorageUnavailableError = New(http.StatusServiceUnavailable, KindStorageUnavailable, "Storage is temporarily unavailable, please retry")
	// ReservationUnknownError is returned when a reservation failed in a way
	// that may still have committed. Clients must re-check availability
	// instead of resubmitting.
	ReservationUnknownError  = New(http.StatusServiceUnavailable, KindStorageUnavailable, "Booking outcome unknown, check availability before retrying")
	IdentityUnavailableError = New(http.StatusServiceUnavailable, KindStorageUnavailable, "Identity provider unavailable, please retry")
	InternalServerError      = New(http.StatusInternalServerError, KindInternal, "Internal server error")
)

// FromValidationError turns validator failures into a 400 listing every
// offending field.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return &apiError{
		Status:  http.StatusBadRequest,
		ErrKind: KindInvalidInput,
		Message: "Validation failed",
		Fields:  fields,
	}
}

func kindOf(code int) Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindInvalidInput
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable:
		return KindStorageUnavailable
	}
	return KindInternal
}
