// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uknown-one/stellarAds/internal/auth"
	"github.com/uknown-one/stellarAds/internal/config"
	"github.com/uknown-one/stellarAds/internal/core"
)

// PremiumFeatureSet is what an upgrade unlocks.
var PremiumFeatureSet = []string{
	"unlimited_listings",
	"featured_listings",
	"priority_support",
}

// TransactionRecorder persists the upgrade payment record inside the
// caller's transaction.
type TransactionRecorder interface {
	RecordUpgrade(
		ctx context.Context,
		dbtx core.DBTX,
		buyerID string,
		amount float64,
		currency, paymentMethod, paymentID string,
	) (string, error)
}

// ReferralCompleter marks the referred user's pending referral completed.
// The premium upgrade is the qualifying action for referral completion.
type ReferralCompleter interface {
	CompleteForReferred(
		ctx context.Context,
		dbtx core.DBTX,
		referredID string,
		now time.Time,
	) error
}

type Service struct {
	db        *sqlx.DB
	repo      Repository
	txns      TransactionRecorder
	referrals ReferralCompleter
	cfg       config.MarketplaceConfig
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	txns TransactionRecorder,
	referrals ReferralCompleter,
	cfg config.MarketplaceConfig,
) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		txns:      txns,
		referrals: referrals,
		cfg:       cfg,
	}
}

// GetMe returns the caller's record. Subscription expiry is evaluated
// lazily here: a lapsed non-renewing premium account is downgraded and the
// downgrade persisted before the response is built.
func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if u.ApplySubscriptionExpiry(time.Now()) {
		if err := s.repo.SetAccountType(ctx, u.ID, u.AccountType); err != nil {
			return nil, err
		}
	}

	return u, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.ContactInfo != nil {
		u.ContactInfo = u.ContactInfo.Merge(req.ContactInfo)
	}
	if req.Preferences != nil {
		u.Preferences = u.Preferences.Merge(req.Preferences)
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Upgrade moves the caller to a premium account: subscription window,
// feature set, a completed payment transaction of the configured price, and
// completion of the caller's pending referral if one exists. All of it
// commits or none of it does.
func (s *Service) Upgrade(
	ctx context.Context,
	userID, paymentMethod, paymentID string,
) (*User, string, error) {
	if userID == "" {
		return nil, "", fmt.Errorf("upgrade: %w", core.ErrUnauthorized)
	}

	var (
		upgraded *User
		txnID    string
	)

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		start := now
		end := now.Add(s.cfg.PremiumDuration)

		u.AccountType = AccountPremium
		u.PremiumStart = &start
		u.PremiumEnd = &end
		u.PremiumAutoRenew = true
		u.PremiumFeatures = core.StringSlice(PremiumFeatureSet)

		if err := repo.SetPremium(ctx, u); err != nil {
			return err
		}

		txnID, err = s.txns.RecordUpgrade(
			ctx,
			tx,
			u.ID,
			s.cfg.PremiumPrice,
			s.cfg.Currency,
			paymentMethod,
			paymentID,
		)
		if err != nil {
			return err
		}

		if err := s.referrals.CompleteForReferred(ctx, tx, u.ID, now); err != nil {
			return err
		}

		upgraded = u
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return upgraded, txnID, nil
}

// AccountType resolves the caller's current tier with the lazy downgrade
// applied, for quota and premium-gating checks in other services.
func (s *Service) AccountType(
	ctx context.Context,
	userID string,
) (string, error) {
	u, err := s.GetMe(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.AccountType, nil
}

// --- auth integration ---

// CreateWithTx inserts a new free-tier user inside the registration
// transaction. Username and email uniqueness surface as ErrDuplicateKey.
func (s *Service) CreateWithTx(
	ctx context.Context,
	dbtx core.DBTX,
	username, email, passwordHash string,
) (*auth.UserInfo, error) {
	u := &User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		AccountType:  AccountFree,
		ContactInfo:  core.JSONMap{},
		Preferences:  core.JSONMap{},
	}

	if err := NewRepository(dbtx).Create(ctx, u); err != nil {
		return nil, err
	}

	return toUserInfo(u), nil
}

// GetByEmail serves login. Subscription expiry is applied before the caller
// sees the account type.
func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	if u.ApplySubscriptionExpiry(time.Now()) {
		if err := s.repo.SetAccountType(ctx, u.ID, u.AccountType); err != nil {
			return nil, err
		}
	}

	return toUserInfo(u), nil
}

func (s *Service) RecordLogin(ctx context.Context, userID string) error {
	return s.repo.RecordLogin(ctx, userID, time.Now())
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		AccountType:  u.AccountType,
	}
}

var _ auth.UserStore = (*Service)(nil)
