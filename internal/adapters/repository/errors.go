package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotConnected = errors.New("database not connected")
	ErrNotFound     = errors.New("document not found")
)
