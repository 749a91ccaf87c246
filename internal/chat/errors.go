package chat

import "errors"

var (
	// ErrAlreadyRegistered means a session tried to join twice.
	ErrAlreadyRegistered = errors.New("chat.Registry: session is registered already")

	// ErrTooManyAttempts ends a session that exhausted its nickname retries.
	ErrTooManyAttempts = errors.New("chat.Session: too many invalid nicknames")

	// ErrServerClosed is returned for work handed to a server after Shutdown.
	ErrServerClosed = errors.New("chat.Server: closed")
)
