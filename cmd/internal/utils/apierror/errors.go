package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

// StructuredError carries a summary message (what the dashboard displays)
// plus the per-field problems reported by the validator.
type StructuredError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Status  int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

var (
	MalformedBodyError  = NewSimple(400, "Malformed JSON body")
	InternalServerError = NewSimple(500, "Internal server error")
	NotFoundError       = NewSimple(404, "Resource not found")

	/*
	 * Used for authentications
	 */
	MissingUserHeaderError   = NewSimple(401, "Missing x-user-id header")
	InvalidSessionUserError  = NewSimple(401, "Invalid session user")
	AccountSuspendedError    = NewSimple(403, "Account is suspended")
	AdminRequiredError       = NewSimple(403, "Admin access required")
	EmailTakenError          = NewSimple(409, "Email already registered")
	CredentialsMismatchError = NewSimple(401, "Invalid email or password")

	/*
	 * Admin guard rails
	 */
	SelfSuspendError  = NewSimple(400, "You cannot deactivate your own account")
	SelfDeleteError   = NewSimple(400, "Admin cannot delete own account")
	UserNotFoundError = NewSimple(404, "User not found")

	SessionIDRequiredError  = NewSimple(400, "sessionId is required")
	ArchiveUnavailableError = NewSimple(503, "Log archive is not configured")
)

// FromValidationError converts validator errors into a StructuredError whose
// summary is msg.
func FromValidationError(err error, msg string) *StructuredError {
	problems := map[string][]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &StructuredError{Message: msg, Errors: problems, Status: http.StatusBadRequest}
	}

	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "nospaces":
			problems[field] = append(problems[field], "Value must not contain whitespace")
		case "role":
			problems[field] = append(problems[field], "Value must be one of: user, admin")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Message: msg,
		Errors:  problems,
		Status:  http.StatusBadRequest,
	}
}

// HasTag reports whether any validation failure was raised by the given tag.
func HasTag(err error, tag string) bool {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}

	for _, fe := range ve {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int, msg string) *StructuredError {
	return &StructuredError{
		Message: msg,
		Errors:  make(map[string][]string),
		Status:  code,
	}
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' has invalid type, expected: %s", name, dataType)
}

func NewUnavailableError(resource string) *APIError {
	return NewSimple(http.StatusInternalServerError, "Unable to %s", resource)
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' is required", name)
}
