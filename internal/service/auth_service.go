package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tonequest/internal/models"
	"tonequest/internal/repository"
	"tonequest/internal/security"
	"tonequest/internal/validation"
)

const resetTokenLifetime = 1 * time.Hour

// AuthService handles registration, login and password recovery
type AuthService struct {
	userRepo  *repository.UserRepository
	assocRepo *repository.AssociationRepository
	tokens    *security.TokenIssuer
	email     *EmailService
	logger    *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, assocRepo *repository.AssociationRepository, tokens *security.TokenIssuer, email *EmailService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		assocRepo: assocRepo,
		tokens:    tokens,
		email:     email,
		logger:    logger,
	}
}

// Register creates a new student account and returns the stored user
func (s *AuthService) Register(username, password, email string) (*models.User, error) {
	if err := validation.Username(username); err != nil {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}
	if email != "" {
		if err := validation.Email(email); err != nil {
			return nil, err
		}
	}

	existing, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(username, hash, models.RoleStudent, email)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username))

	return user, nil
}

// CreateUser creates an account with an explicit role, used by admins
func (s *AuthService) CreateUser(username, password string, role models.Role, email string) (*models.User, error) {
	if !role.IsValid() {
		return nil, validation.Error{Field: "role", Message: "invalid role"}
	}
	user, err := s.Register(username, password, email)
	if err != nil {
		return nil, err
	}
	if role == models.RoleStudent {
		return user, nil
	}

	// Register always creates students; promote afterwards
	if err := s.userRepo.UpdateRole(user.ID, role); err != nil {
		return nil, fmt.Errorf("setting role: %w", err)
	}
	user.Role = role
	return user, nil
}

// Login verifies credentials and returns the user with a signed token
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, token, nil
}

// LoginOAuth finds or creates a user for a verified OAuth identity and
// returns a signed token. New accounts get the student role and no
// local password.
func (s *AuthService) LoginOAuth(subject, email, suggestedName string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByOAuthSubject(subject)
	if err != nil {
		return nil, "", fmt.Errorf("looking up oauth user: %w", err)
	}

	if user == nil {
		username, err := s.pickUsername(suggestedName)
		if err != nil {
			return nil, "", err
		}
		user, err = s.userRepo.CreateOAuthUser(username, subject, email)
		if err != nil {
			return nil, "", fmt.Errorf("creating oauth user: %w", err)
		}
		s.logger.Info("oauth user created",
			zap.String("user_id", user.ID),
			zap.String("username", user.Username))
	}

	token, err := s.tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// pickUsername derives a free username from the OAuth profile name
func (s *AuthService) pickUsername(base string) (string, error) {
	if validation.Username(base) != nil {
		base = "player"
	}
	for i := 0; i < 50; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		existing, err := s.userRepo.GetUserByUsername(candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not derive a free username from %q", base)
}

// RequestPasswordReset creates a reset token and emails a reset link.
// It reports success even for unknown emails so the endpoint does not
// leak which accounts exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) error {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || user.Email == "" {
		s.logger.Info("password reset requested for unknown or email-less account",
			zap.String("username", username))
		return nil
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.CreatePasswordResetToken(token, user.ID, time.Now().Add(resetTokenLifetime)); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	if err := s.email.SendPasswordResetEmail(ctx, user.Email, user.Username, token); err != nil {
		s.logger.Error("sending reset email failed",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return fmt.Errorf("sending reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if err := validation.Password(newPassword); err != nil {
		return err
	}

	stored, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("looking up reset token: %w", err)
	}
	if stored == nil || stored.Used || stored.IsExpired() {
		return ErrInvalidResetToken
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	updated, err := s.userRepo.UpdatePassword(stored.UserID, hash)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if !updated {
		return ErrUserNotFound
	}
	if err := s.userRepo.MarkPasswordResetTokenUsed(token); err != nil {
		return fmt.Errorf("marking token used: %w", err)
	}

	s.logger.Info("password reset completed", zap.String("user_id", stored.UserID))
	return nil
}

// SetPassword sets a user's password directly, used by admins
func (s *AuthService) SetPassword(userID, newPassword string) error {
	if err := validation.Password(newPassword); err != nil {
		return err
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	updated, err := s.userRepo.UpdatePassword(userID, hash)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if !updated {
		return ErrUserNotFound
	}
	return nil
}

// AssociateStudent links a student to a teacher so the teacher can view
// the student's statistics. Repeated associations are a no-op.
func (s *AuthService) AssociateStudent(studentID, teacherID string) error {
	student, err := s.userRepo.GetUserByID(studentID)
	if err != nil {
		return err
	}
	if student == nil || student.Role != models.RoleStudent {
		return ErrUserNotFound
	}

	teacher, err := s.userRepo.GetUserByID(teacherID)
	if err != nil {
		return err
	}
	if teacher == nil || teacher.Role != models.RoleTeacher {
		return ErrUserNotFound
	}

	if err := s.assocRepo.CreateAssociation(studentID, teacherID); err != nil {
		return fmt.Errorf("creating association: %w", err)
	}

	s.logger.Info("student associated with teacher",
		zap.String("student_id", studentID),
		zap.String("teacher_id", teacherID))
	return nil
}

// GetUser returns a user by id
func (s *AuthService) GetUser(userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
