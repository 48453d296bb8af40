package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation")                   // 400
	ErrNotFound   = errors.New("not found")                    // 404
	ErrConflict   = fmt.Errorf("%w: duplicate", ErrValidation) // 409

	ErrInvalidTransition = fmt.Errorf("%w: status change not allowed", ErrValidation)
	ErrNoSession         = fmt.Errorf("%w: session", ErrNotFound)

	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
