package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrListenerClosed is returned by Serve once the listener is closed or the context is done.
	ErrListenerClosed = errors.New("transport: listener closed")
	ErrInvalidBuffer  = NewTpError(1001, "Invalid receive buffer size", "")
)

type tpError struct {
	code    int
	msg     string
	context string
}

func (e *tpError) Error() string {
	if e.context != "" {
		return fmt.Sprintf("Error %d: %s (context: %s)", e.code, e.msg, e.context)
	}
	return fmt.Sprintf("Error %d: %s", e.code, e.msg)
}

// Is matches errors by code so contextual copies compare equal to the sentinels.
func (e *tpError) Is(target error) bool {
	t, ok := target.(*tpError)
	return ok && t.code == e.code
}

// WithContext returns a copy carrying extra context.
func (e *tpError) WithContext(context string) error {
	return &tpError{code: e.code, msg: e.msg, context: context}
}

func NewTpError(code int, message string, context string) *tpError {
	return &tpError{
		code:    code,
		msg:     message,
		context: context,
	}
}
