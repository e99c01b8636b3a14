package service

import "errors"

// Sentinel errors returned by services. Handlers map these onto HTTP
// status codes.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")

	ErrDeckNotFound = errors.New("deck not found")
	ErrEmptyDeck    = errors.New("deck has no words")
	ErrWordNotFound = errors.New("word not found")

	ErrSessionNotFound   = errors.New("game session not found")
	ErrSessionEnded      = errors.New("game session already ended")
	ErrWordNotInSession  = errors.New("word is not part of this session")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)
