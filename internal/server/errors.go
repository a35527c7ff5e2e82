package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed           = errors.New("server is closed")
	ErrServerNotRunning       = errors.New("server is not running")
	ErrServerAlreadyRunning   = errors.New("server is already running")
	ErrClientAlreadyConnected = errors.New("a display client is already connected")
	ErrInvalidMessage         = errors.New("invalid message")
	ErrInvalidConfig          = errors.New("invalid server configuration")
	ErrListenerFailed         = errors.New("failed to create listener")
)
