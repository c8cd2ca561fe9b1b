package repository

import (
	"context"
	"database/sql"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/models"
)

// UserRepository persists user identity records in PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, name, email, password_hash, phone_number,
	address_line1, address_line2, address_line3, town, county, postcode,
	created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, name, email, password_hash, phone_number,
			address_line1, address_line2, address_line3, town, county, postcode,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.PhoneNumber,
		user.Address.Line1, nullString(user.Address.Line2), nullString(user.Address.Line3),
		user.Address.Town, user.Address.County, user.Address.Postcode,
		user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("email already exists: %s", user.Email)
	}
	if err != nil {
		return storeError("create user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found with id: %s", userID)
	}
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found with email: %s", email)
	}
	return user, err
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, phone_number = $3,
			address_line1 = $4, address_line2 = $5, address_line3 = $6,
			town = $7, county = $8, postcode = $9,
			updated_at = $10
		WHERE user_id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.PhoneNumber,
		user.Address.Line1, nullString(user.Address.Line2), nullString(user.Address.Line3),
		user.Address.Town, user.Address.County, user.Address.Postcode,
		user.UpdatedAt,
	)
	if err != nil {
		return storeError("update user", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storeError("check rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("user not found with id: %s", user.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return storeError("delete user", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storeError("check rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("user not found with id: %s", userID)
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var line2, line3 sql.NullString
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.PhoneNumber,
		&user.Address.Line1, &line2, &line3,
		&user.Address.Town, &user.Address.County, &user.Address.Postcode,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, storeError("scan user", err)
	}
	user.Address.Line2 = line2.String
	user.Address.Line3 = line3.String
	return &user, nil
}
