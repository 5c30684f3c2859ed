// Package response holds the uniform result envelope every user route
// returns. All five keys are always serialized; absent values are null.
package response

import "github.com/google/uuid"

type Envelope struct {
	ID      *uuid.UUID  `json:"id"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
	Error   *string     `json:"error"`
}

// OK builds a success envelope. id and data may be nil.
func OK(id *uuid.UUID, message string, data interface{}) Envelope {
	return Envelope{ID: id, Message: message, Data: data, Success: true}
}

// Fail builds a failure envelope. code is either a stable machine-readable
// value (DUPLICATE_EMAIL, USER_NOT_FOUND) or the underlying error text for
// unexpected failures.
func Fail(message, code string) Envelope {
	return Envelope{Message: message, Error: &code}
}
