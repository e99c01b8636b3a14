package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tonequest/internal/models"
	"tonequest/internal/security"
)

func (env *testEnv) newAuthService(t *testing.T) *AuthService {
	t.Helper()

	email, err := NewEmailService(context.Background(), "", "", "", "", zap.NewNop())
	if err != nil {
		t.Fatalf("NewEmailService failed: %v", err)
	}
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	return NewAuthService(env.userRepo, env.assocRepo, tokens, email, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(t)

	user, err := auth.Register("alice", "password123", "alice@example.com")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != models.RoleStudent {
		t.Errorf("new accounts must be students, got %s", user.Role)
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}

	loggedIn, token, err := auth.Login("alice", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID || token == "" {
		t.Error("login did not return the user with a token")
	}

	if _, _, err := auth.Login("alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := auth.Login("nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(t)

	if _, err := auth.Register("alice", "password123", ""); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := auth.Register("alice", "different456", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(t)

	if _, err := auth.Register("ab", "password123", ""); err == nil {
		t.Error("short username accepted")
	}
	if _, err := auth.Register("alice", "short", ""); err == nil {
		t.Error("short password accepted")
	}
	if _, err := auth.Register("alice", "password123", "not-an-email"); err == nil {
		t.Error("bad email accepted")
	}
}

func TestCreateUserWithRole(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(t)

	teacher, err := auth.CreateUser("ms-wong", "password123", models.RoleTeacher, "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if teacher.Role != models.RoleTeacher {
		t.Errorf("role = %s, want teacher", teacher.Role)
	}

	stored, err := env.userRepo.GetUserByID(teacher.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored user lookup failed: %v", err)
	}
	if stored.Role != models.RoleTeacher {
		t.Errorf("stored role = %s, want teacher", stored.Role)
	}

	if _, err := auth.CreateUser("bogus", "password123", models.Role("wizard"), ""); err == nil {
		t.Error("invalid role accepted")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(t)

	user, err := auth.Register("alice", "password123", "alice@example.com")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Email sending is disabled in tests; drive the flow through the
	// repository directly
	token, err := security.GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken failed: %v", err)
	}
	if err := env.userRepo.CreatePasswordResetToken(token, user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreatePasswordResetToken failed: %v", err)
	}

	if err := auth.ResetPassword(token, "newpassword456"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if _, _, err := auth.Login("alice", "newpassword456"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, _, err := auth.Login("alice", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still works after reset")
	}

	// Token is single use
	if err := auth.ResetPassword(token, "anotherpass789"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expected ErrInvalidResetToken on reuse, got %v", err)
	}
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(t)

	user, err := auth.Register("alice", "password123", "alice@example.com")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, _ := security.GenerateResetToken()
	if err := env.userRepo.CreatePasswordResetToken(token, user.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("CreatePasswordResetToken failed: %v", err)
	}

	if err := auth.ResetPassword(token, "newpassword456"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAssociateStudentValidatesRoles(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(t)

	student := env.createUser(t, "student", models.RoleStudent)
	teacher := env.createUser(t, "teacher", models.RoleTeacher)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	if err := auth.AssociateStudent(student.ID, teacher.ID); err != nil {
		t.Fatalf("AssociateStudent failed: %v", err)
	}
	// Repeat associations are a no-op
	if err := auth.AssociateStudent(student.ID, teacher.ID); err != nil {
		t.Errorf("repeated association failed: %v", err)
	}

	if err := auth.AssociateStudent(teacher.ID, teacher.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("teacher as student accepted: %v", err)
	}
	if err := auth.AssociateStudent(student.ID, admin.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("admin as teacher accepted: %v", err)
	}
}
