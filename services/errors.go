package services

import "errors"

// Common service-level errors
var (
	// Auth errors
	ErrInvalidState = errors.New("invalid or expired authorization state")

	// Connection errors
	ErrConnectionNotFound = errors.New("connection not found")

	// File errors
	ErrFileNotFound = errors.New("file not found")
)
