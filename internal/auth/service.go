// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/uknown-one/stellarAds/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserInfo struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	AccountType  string
}

type UserStore interface {
	CreateWithTx(
		ctx context.Context,
		dbtx core.DBTX,
		username, email, passwordHash string,
	) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	RecordLogin(ctx context.Context, userID string) error
}

// AffiliateProvisioner creates the user's affiliate account and, when a
// referral code was supplied, the pending referral record — both inside the
// registration transaction.
type AffiliateProvisioner interface {
	ProvisionWithTx(ctx context.Context, dbtx core.DBTX, userID string) error
	CreateReferralWithTx(
		ctx context.Context,
		dbtx core.DBTX,
		referralCode, referredID string,
	) error
}

type Service struct {
	db         *sqlx.DB
	jwt        *JWTManager
	users      UserStore
	affiliates AffiliateProvisioner
}

func NewService(
	db *sqlx.DB,
	jwt *JWTManager,
	users UserStore,
	affiliates AffiliateProvisioner,
) *Service {
	return &Service{
		db:         db,
		jwt:        jwt,
		users:      users,
		affiliates: affiliates,
	}
}

// Register creates the user and their affiliate account as one logical
// transaction: a failed affiliate insert rolls the user back, so no user
// exists without an affiliate record. An unknown referral code is ignored
// rather than failing the registration.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *UserInfo

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		u, err := s.users.CreateWithTx(
			ctx,
			tx,
			req.Username,
			req.Email,
			passwordHash,
		)
		if err != nil {
			return err
		}

		if err := s.affiliates.ProvisionWithTx(ctx, tx, u.ID); err != nil {
			return fmt.Errorf("provision affiliate: %w", err)
		}

		if req.ReferralCode != "" {
			err := s.affiliates.CreateReferralWithTx(
				ctx,
				tx,
				req.ReferralCode,
				u.ID,
			)
			if err != nil && !errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("create referral: %w", err)
			}
			if errors.Is(err, core.ErrNotFound) {
				slog.Info("ignoring unknown referral code",
					"code", req.ReferralCode,
				)
			}
		}

		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(created)
}

// Login verifies credentials with a constant-time comparison regardless of
// whether the account exists.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, &u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.RecordLogin(ctx, u.ID); err != nil {
		slog.Warn("failed to record login", "user_id", u.ID, "error", err)
	}

	return s.buildAuthResponse(u)
}

func (s *Service) buildAuthResponse(u *UserInfo) (*AuthResponse, error) {
	token, err := s.jwt.CreateToken(u.ID, u.AccountType)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &AuthResponse{
		Token: token,
		User: UserResponse{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			AccountType: u.AccountType,
		},
	}, nil
}
