package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// ========== User Methods ==========

// CreateUser creates an administrator account
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	query := `
        INSERT INTO users (id, created_at, updated_at, email, name, password_hash,
                           is_admin, is_active, chat_id, last_login_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.CreatedAt, user.UpdatedAt, user.Email, user.Name,
		user.PasswordHash, user.IsAdmin, user.IsActive, user.ChatID, user.LastLoginAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetUser gets a user by id
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUserWhere(ctx, "id = $1", id)
}

// GetUserByEmail gets a user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserWhere(ctx, "email = $1", email)
}

func (s *PostgresStore) getUserWhere(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
        SELECT id, created_at, updated_at, email, name, password_hash,
               is_admin, is_active, chat_id, last_login_at
        FROM users
        WHERE ` + where

	user := &models.User{}
	err := s.getDB().QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Email, &user.Name,
		&user.PasswordHash, &user.IsAdmin, &user.IsActive, &user.ChatID, &user.LastLoginAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser updates a user
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
        UPDATE users SET
            updated_at = $2, email = $3, name = $4, password_hash = $5,
            is_admin = $6, is_active = $7, chat_id = $8, last_login_at = $9
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.UpdatedAt, user.Email, user.Name, user.PasswordHash,
		user.IsAdmin, user.IsActive, user.ChatID, user.LastLoginAt,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListAdminChatIDs returns the chat identities of active administrators
// that have one linked, for notification fan-out.
func (s *PostgresStore) ListAdminChatIDs(ctx context.Context) ([]int64, error) {
	query := `
        SELECT chat_id
        FROM users
        WHERE is_admin = TRUE AND is_active = TRUE AND chat_id IS NOT NULL`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
