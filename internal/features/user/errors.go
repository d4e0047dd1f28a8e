package user

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidIdentity  = errors.New("identity has no user id")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTaken    = errors.New("username belongs to another user")
)

// MissingError reports a username that does not resolve to a user.
type MissingError struct {
	Username string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("user %q not found", e.Username)
}

// Is lets errors.Is(err, ErrUserNotFound) match.
func (e *MissingError) Is(target error) bool {
	return target == ErrUserNotFound
}
