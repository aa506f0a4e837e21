package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goAuthKit "github.com/MrEthical07/goAuthKit"
)

// ErrNotFound is an exported constant or variable used by the authentication engine.
var ErrNotFound = errors.New("record not found")

const userColumns = `user_id, email, phone, username, first_name, last_name,
	password_hash, is_active, is_verified, email_verified, phone_verified,
	created_at, updated_at`

// GetUserByID describes the getuserbyid operation and its observable behavior.
//
// GetUserByID may return an error when input validation, dependency calls, or security checks fail.
// GetUserByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetUserByID(ctx context.Context, userID string) (goAuthKit.UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM auth_users WHERE user_id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, userID))
}

// GetUserByIdentifier describes the getuserbyidentifier operation and its observable behavior.
//
// GetUserByIdentifier may return an error when input validation, dependency calls, or security checks fail.
// GetUserByIdentifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (goAuthKit.UserRecord, error) {
	var query string
	if goAuthKit.ChannelOf(identifier) == goAuthKit.ChannelEmail {
		query = `SELECT ` + userColumns + ` FROM auth_users WHERE email = $1`
	} else {
		query = `SELECT ` + userColumns + ` FROM auth_users WHERE phone = $1`
	}
	return s.scanUser(s.db.QueryRowContext(ctx, query, identifier))
}

// CreateUser describes the createuser operation and its observable behavior.
//
// CreateUser may return an error when input validation, dependency calls, or security checks fail.
// CreateUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CreateUser(ctx context.Context, input goAuthKit.CreateUserInput) (goAuthKit.UserRecord, error) {
	query := `INSERT INTO auth_users
		(email, phone, username, first_name, last_name, password_hash,
		 is_active, is_verified, email_verified, phone_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	row := s.db.QueryRowContext(ctx, query,
		nullable(input.Email), nullable(input.Phone), input.Username,
		input.FirstName, input.LastName, input.PasswordHash,
		input.IsActive, input.IsVerified, input.EmailVerified, input.PhoneVerified,
	)
	return s.scanUser(row)
}

// UpdatePasswordHash describes the updatepasswordhash operation and its observable behavior.
//
// UpdatePasswordHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePasswordHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET password_hash = $1, updated_at = now() WHERE user_id = $2`,
		newHash, userID,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return requireRows(res)
}

// MarkChannelVerified describes the markchannelverified operation and its observable behavior.
//
// MarkChannelVerified may return an error when input validation, dependency calls, or security checks fail.
// MarkChannelVerified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) MarkChannelVerified(ctx context.Context, userID string, channel goAuthKit.Channel) error {
	column := "phone_verified"
	if channel == goAuthKit.ChannelEmail {
		column = "email_verified"
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET `+column+` = TRUE, is_verified = TRUE, updated_at = now() WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("mark channel verified: %w", err)
	}
	return requireRows(res)
}

func (s *Store) scanUser(row *sql.Row) (goAuthKit.UserRecord, error) {
	var (
		user         goAuthKit.UserRecord
		email, phone sql.NullString
	)

	err := row.Scan(
		&user.UserID, &email, &phone, &user.Username,
		&user.FirstName, &user.LastName, &user.PasswordHash,
		&user.IsActive, &user.IsVerified, &user.EmailVerified, &user.PhoneVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goAuthKit.UserRecord{}, ErrNotFound
		}
		return goAuthKit.UserRecord{}, fmt.Errorf("scan user: %w", err)
	}

	user.Email = email.String
	user.Phone = phone.String
	return user, nil
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
