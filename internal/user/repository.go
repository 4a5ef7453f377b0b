// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/uknown-one/stellarAds/internal/core"
)

const userColumns = `
	id, username, email, password_hash, account_type, credits,
	last_login, profile_picture, contact_info, preferences,
	premium_start, premium_end, premium_auto_renew, premium_features,
	created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, u *User) error
	SetAccountType(ctx context.Context, id, accountType string) error
	SetPremium(ctx context.Context, u *User) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (
			id, username, email, password_hash, account_type, credits,
			contact_info, preferences
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, u, query,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.AccountType,
		u.Credits,
		u.ContactInfo,
		u.Preferences,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE id = $1`,
		userColumns,
	)

	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE email = $1`,
		userColumns,
	)

	var u User
	err := r.db.GetContext(ctx, &u, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &u, nil
}

func (r *repository) UpdateProfile(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET username = $2, contact_info = $3, preferences = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &u.UpdatedAt, query,
		u.ID,
		u.Username,
		u.ContactInfo,
		u.Preferences,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update profile: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

// SetAccountType persists the lazy subscription-expiry downgrade.
func (r *repository) SetAccountType(
	ctx context.Context,
	id, accountType string,
) error {
	query := `
		UPDATE users
		SET account_type = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, accountType)
	if err != nil {
		return fmt.Errorf("set account type: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set account type: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set account type: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetPremium(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET account_type = $2, premium_start = $3, premium_end = $4,
		    premium_auto_renew = $5, premium_features = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &u.UpdatedAt, query,
		u.ID,
		u.AccountType,
		u.PremiumStart,
		u.PremiumEnd,
		u.PremiumAutoRenew,
		u.PremiumFeatures,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("set premium: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("set premium: %w", err)
	}

	return nil
}

func (r *repository) RecordLogin(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	query := `UPDATE users SET last_login = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
