package k7err

import (
	"fmt"
	"strings"
)

// ErrKeyNotFound is an error that indicates the cassette holds no recording
// for a request.
type ErrKeyNotFound struct {
	request string
}

// NewErrKeyNotFound creates a new initialised ErrKeyNotFound.
func NewErrKeyNotFound(request string) *ErrKeyNotFound {
	return &ErrKeyNotFound{
		request: request,
	}
}

// Request returns the raw request that was not found.
func (e ErrKeyNotFound) Request() string {
	return e.request
}

func (e ErrKeyNotFound) Error() string {
	line, _, _ := strings.Cut(e.request, "\r\n")
	return fmt.Sprintf("no recorded response for request '%s'", line)
}

// ErrScope is an error that indicates a cassette was opened or closed out of turn.
type ErrScope struct {
	message string
}

// NewErrScope creates a new initialised ErrScope.
func NewErrScope(message string) *ErrScope {
	return &ErrScope{
		message: message,
	}
}

func (e ErrScope) Error() string {
	return fmt.Sprint(e.message)
}
