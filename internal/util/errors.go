package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrActivityNotFound   = errors.New("activity not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrResourceNotFound   = errors.New("additional resource not found")
	ErrSlotConflict       = errors.New("module slot already exists")
	ErrInvalidBody        = errors.New("body does not decode as a module body")
	ErrActivityIncomplete = errors.New("activity has incomplete modules")
)
