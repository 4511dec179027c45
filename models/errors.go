package models

import "fmt"

// Status codes mirrored from HTTP. They are not part of the response body.
const (
	StatusOK         = 200
	StatusBadRequest = 400
	StatusNotFound   = 404
	StatusServerErr  = 500
)

// Error kinds carried in ErrorResponse.Error
const (
	KindInvalidJSON   = "Invalid JSON"
	KindMissingID     = "Missing ID"
	KindUnknownAction = "Unknown Action"
	KindDBError       = "DB Error"
	KindDataError     = "Data Error"
	KindSetFailed     = "Set Failed"
	KindScanFailed    = "Scan Failed"
)

// ActionError is a request failure that is reported to the client
type ActionError struct {
	Kind    string
	Message string
	Status  int
}

// NewActionError creates an ActionError with a formatted message
func NewActionError(kind string, status int, format string, args ...any) *ActionError {
	return &ActionError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Status:  status,
	}
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

// Response returns the body sent to the client
func (e *ActionError) Response() ErrorResponse {
	return ErrorResponse{Error: e.Kind, Message: e.Message}
}
