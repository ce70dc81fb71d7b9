package canvas

import "errors"

// Validation failures: reported privately to the sender, no state change.
var (
	ErrUsernameTooShort = errors.New("username must be at least 2 characters")
	ErrNameTaken        = errors.New("username already in use in this room")
	ErrBadCoordinates   = errors.New("pixel coordinates out of range")
	ErrEmptyMessage     = errors.New("empty message")
)

// Authorization failures: sender is not allowed to perform the mutation.
var (
	ErrNotInRoom     = errors.New("user does not occupy this room")
	ErrNotAdmin      = errors.New("admin privileges required")
	ErrBadSecret     = errors.New("invalid admin secret")
	ErrNotRegistered = errors.New("not a registered admin identity")
)

// ErrBanned is terminal: the connection is closed after the ban notice.
var ErrBanned = errors.New("user or address is banned")
