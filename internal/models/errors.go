package models

import (
	"errors"
)

var (
	ErrUnauthorized    = errors.New("models: unauthorized")
	ErrInvalidCode     = errors.New("models: invalid login code")
	ErrSessionNotFound = errors.New("models: session not found")
	ErrLicensePending  = errors.New("models: license not ready yet")
)
