package view

import "errors"

var (
	ErrViewNotFound       = errors.New("view not found")
	ErrViewingTimeInvalid = errors.New("viewing time cannot be negative")
)
