package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that nobody is logged in on this device
	ErrSessionNotFound = errors.New("session not found")

	// ErrPINNotSet означает, что локальная блокировка не настроена
	ErrPINNotSet = errors.New("unlock PIN is not set")
)
