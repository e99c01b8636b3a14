package models

import "time"

// Role identifies what a user is allowed to do
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the system
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Email        string
	OAuthSubject string
	CreatedAt    time.Time
}

// StudentTeacherAssociation links a student to a teacher for statistics scoping
type StudentTeacherAssociation struct {
	ID        string
	StudentID string
	TeacherID string
	CreatedAt time.Time
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
