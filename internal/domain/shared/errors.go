package shared

// DomainError is a rule violation shown to the portal user as is.
// Code selects the HTTP status and API error code; Message is the user-facing text.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches by Code, so a per-module error such as a FORBIDDEN contract
// check satisfies errors.Is(err, ErrForbidden)
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errors shared by every module; modules declare their own with the same codes
var (
	ErrNotFound       = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists  = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput   = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrOptimisticLock = NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record was changed by someone else. Reload it and try again.")
	ErrForbidden      = NewDomainError("FORBIDDEN", "You do not have permission to perform this action.")
	ErrInvalidState   = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
