package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

// Error represents a validation error for a single field
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Username checks if a username is valid
func Username(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return Error{Field: "username", Message: "username is required"}
	}
	if len(username) < 3 {
		return Error{Field: "username", Message: "username must be at least 3 characters"}
	}
	if len(username) > 32 {
		return Error{Field: "username", Message: "username must be at most 32 characters"}
	}
	if !usernameRegex.MatchString(username) {
		return Error{Field: "username", Message: "username may only contain letters, digits, _ and -"}
	}
	return nil
}

// Password checks if a password meets requirements
func Password(password string) error {
	if password == "" {
		return Error{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return Error{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > 128 {
		return Error{Field: "password", Message: "password must be at most 128 characters"}
	}
	return nil
}

// Email checks if an email address is valid
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Error{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return Error{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// DeckName checks if a deck name is valid
func DeckName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Error{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > 100 {
		return Error{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}

// WordText checks if word text is valid
func WordText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return Error{Field: "text", Message: "text is required"}
	}
	if utf8.RuneCountInString(text) > 50 {
		return Error{Field: "text", Message: "text must be at most 50 characters"}
	}
	return nil
}
