package repository

import (
	"context"
	"fmt"
	"time"

	"photo-social-backend/internal/db"
	"photo-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, display_name, role, last_login, created_at`

// UserRepository handles database operations for users and their devices
type UserRepository struct {
	db db.Querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(db db.Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, display_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.DisplayName, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		return writeError("create user", err)
	}
	return nil
}

// CreateWithDevice creates a user and its first device in one transaction
func (r *UserRepository) CreateWithDevice(ctx context.Context, user *models.User, device *models.Device) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, display_name, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, user.ID, user.Email, user.PasswordHash, user.DisplayName, string(user.Role), user.CreatedAt)
		if err != nil {
			return writeError("create user", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO devices (id, user_id, type, identifier)
			VALUES ($1, $2, $3, $4)
		`, device.ID, device.UserID, string(device.Type), device.Identifier)
		if err != nil {
			return writeError("create device", err)
		}
		return nil
	})
}

// GetByID retrieves a user by ID together with its devices
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, readError("get user", err)
	}

	devices, err := r.ListDevices(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Devices = devices
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, readError("get user by email", err)
	}
	return user, nil
}

// GetByDisplayName retrieves a user by display name
func (r *UserRepository) GetByDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE display_name = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, displayName))
	if err != nil {
		return nil, readError("get user by display name", err)
	}
	return user, nil
}

// Exists checks if a user with the given ID exists
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, listError("check user existence", err)
	}
	return exists, nil
}

// ListDevices returns the devices bound to a user
func (r *UserRepository) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	query := `
		SELECT id, user_id, type, identifier
		FROM devices
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, listError("list devices", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		var deviceType string
		if err := rows.Scan(&d.ID, &d.UserID, &deviceType, &d.Identifier); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		d.Type = models.DeviceType(deviceType)
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, listError("iterate devices", err)
	}
	return devices, nil
}

// SetCredentials attaches email, password hash and display name to an existing user
func (r *UserRepository) SetCredentials(ctx context.Context, id, email, passwordHash, displayName string) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, display_name = $3
		WHERE id = $4
	`
	result, err := r.db.Exec(ctx, query, email, passwordHash, displayName, id)
	if err != nil {
		return writeError("set user credentials", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDisplayName changes the display name of a user
func (r *UserRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	query := `UPDATE users SET display_name = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, displayName, id)
	if err != nil {
		return writeError("update display name", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastLogin records the time of the latest successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, at, id); err != nil {
		return writeError("update last login", err)
	}
	return nil
}

// Delete deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return writeError("delete user", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role string
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName,
		&role, &user.LastLogin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}
