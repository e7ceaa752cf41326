package building

import "errors"

var (
	// ErrInvalidRequest is returned when a request body is not a JSON object
	// carrying a "payload" member.
	ErrInvalidRequest = errors.New("invalid request body")

	// ErrEmptyPayload is returned when the payload is missing its buildings.
	ErrEmptyPayload = errors.New("payload can not be empty")

	// ErrInvalidDocument is returned when the payload is not a valid
	// building document.
	ErrInvalidDocument = errors.New("invalid building document")
)
