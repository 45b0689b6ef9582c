package errorx

import "fmt"

type Error struct {
	Code    Code
	Message string
	Details map[string]string
}

var Unknown = Error{Code: Internal, Message: "Request failed"}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// WithDetails attaches per-field information to the error. The router includes
// the details in the error envelope sent to the client.
func (e Error) WithDetails(details map[string]string) Error {
	e.Details = details
	return e
}

// WithDetail is a shorthand of WithDetails for a single field.
func (e Error) WithDetail(field, message string) Error {
	details := map[string]string{field: message}
	for k, v := range e.Details {
		details[k] = v
	}
	e.Details = details
	return e
}
