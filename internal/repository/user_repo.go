package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"tonequest/internal/database"
	"tonequest/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user and returns it
func (r *UserRepository) CreateUser(username, passwordHash string, role models.Role, email string) (*models.User, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO users (id, username, password_hash, role, email)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, id, username, passwordHash, string(role), email); err != nil {
		return nil, err
	}

	return r.GetUserByID(id)
}

// CreateOAuthUser inserts a user backed by an external OAuth identity.
// Such users have no local password.
func (r *UserRepository) CreateOAuthUser(username, oauthSubject, email string) (*models.User, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO users (id, username, password_hash, role, email, oauth_subject)
		VALUES (?, ?, '', ?, ?, ?)
	`

	if _, err := r.db.Exec(query, id, username, string(models.RoleStudent), email, oauthSubject); err != nil {
		return nil, err
	}

	return r.GetUserByID(id)
}

// GetUserByID retrieves a user by ID, nil when absent
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	return r.getUser("id = ?", id)
}

// GetUserByUsername retrieves a user by username, nil when absent
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	return r.getUser("username = ?", username)
}

// GetUserByOAuthSubject retrieves a user by the subject claim of their
// OAuth identity, nil when absent
func (r *UserRepository) GetUserByOAuthSubject(subject string) (*models.User, error) {
	return r.getUser("oauth_subject = ?", subject)
}

func (r *UserRepository) getUser(where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, email, oauth_subject, created_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	var role string

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&role,
		&user.Email,
		&user.OAuthSubject,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Role = models.Role(role)
	return user, nil
}

// ListUsersByRole retrieves all users with the given role, ordered by username
func (r *UserRepository) ListUsersByRole(role models.Role) ([]models.User, error) {
	query := `
		SELECT id, username, password_hash, role, email, oauth_subject, created_at
		FROM users
		WHERE role = ?
		ORDER BY username ASC
	`

	rows, err := r.db.Query(query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var roleStr string

		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&roleStr,
			&user.Email,
			&user.OAuthSubject,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		user.Role = models.Role(roleStr)
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdatePassword replaces a user's password hash. Returns false when the
// user does not exist.
func (r *UserRepository) UpdatePassword(userID, passwordHash string) (bool, error) {
	result, err := r.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, userID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(userID string, role models.Role) error {
	_, err := r.db.Exec("UPDATE users SET role = ? WHERE id = ?", string(role), userID)
	return err
}

// CreatePasswordResetToken stores a reset token for a user
func (r *UserRepository) CreatePasswordResetToken(token, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, token, userID, expiresAt)
	return err
}

// GetPasswordResetToken retrieves a reset token, nil when absent
func (r *UserRepository) GetPasswordResetToken(token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT token, user_id, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = ?
	`

	t := &models.PasswordResetToken{}
	err := r.db.QueryRow(query, token).Scan(
		&t.Token,
		&t.UserID,
		&t.ExpiresAt,
		&t.Used,
		&t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return t, nil
}

// MarkPasswordResetTokenUsed invalidates a reset token after use
func (r *UserRepository) MarkPasswordResetTokenUsed(token string) error {
	_, err := r.db.Exec("UPDATE password_reset_tokens SET used = ? WHERE token = ?", true, token)
	return err
}

// DeleteExpiredResetTokens removes used and expired reset tokens
func (r *UserRepository) DeleteExpiredResetTokens(now time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM password_reset_tokens WHERE used = ? OR expires_at < ?", true, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
