package backend

import "fmt"

// CodeInsufficientBalance is the reserved failure code the backend uses
// when the caller's account cannot cover an action's cost. The
// dispatcher turns it into a payment descriptor instead of a plain
// error message.
const CodeInsufficientBalance = 402

// ErrorData carries the structured balance details attached to an
// insufficient-balance failure. Amounts are in the backend's credit
// unit.
type ErrorData struct {
	Shortfall    float64 `json:"shortfall"`
	Current      float64 `json:"current"`
	Required     float64 `json:"required"`
	ResourceType string  `json:"resourceType,omitempty"`
}

// Error is a structured failure reported by the backend.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}

// InsufficientBalance reports whether this failure is the reserved
// insufficient-balance condition.
func (e *Error) InsufficientBalance() bool {
	return e.Code == CodeInsufficientBalance
}
