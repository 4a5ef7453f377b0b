// AngelaMos | 2026
// service.go

package affiliate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uknown-one/stellarAds/internal/config"
	"github.com/uknown-one/stellarAds/internal/core"
)

const (
	codeRetryLimit  = 5
	recentReferrals = 5
)

type Service struct {
	repo Repository
	cfg  config.MarketplaceConfig

	// newRepo binds a repository to the transaction handed in by the
	// caller of the WithTx methods.
	newRepo func(core.DBTX) Repository
}

func NewService(repo Repository, cfg config.MarketplaceConfig) *Service {
	return &Service{repo: repo, cfg: cfg, newRepo: NewRepository}
}

// ProvisionWithTx creates the affiliate record for a new user inside the
// registration transaction. Every account starts bronze with a fresh
// referral code; code collisions are retried a few times before giving up.
func (s *Service) ProvisionWithTx(
	ctx context.Context,
	dbtx core.DBTX,
	userID string,
) error {
	repo := s.newRepo(dbtx)

	var lastErr error
	for range codeRetryLimit {
		code, err := core.GenerateReferralCode(s.cfg.ReferralCodeLength)
		if err != nil {
			return fmt.Errorf("generate referral code: %w", err)
		}

		a := &Affiliate{
			ID:           uuid.NewString(),
			UserID:       userID,
			ReferralCode: code,
			Tier:         TierBronze,
		}

		lastErr = repo.CreateAffiliate(ctx, a)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, core.ErrDuplicateKey) {
			return lastErr
		}
	}

	return fmt.Errorf("provision affiliate: %w", lastErr)
}

// CreateReferralWithTx records that the new user signed up through the
// given code. Unknown codes surface ErrNotFound for the caller to ignore.
// Self-referral is rejected, and a user can only ever be referred once.
func (s *Service) CreateReferralWithTx(
	ctx context.Context,
	dbtx core.DBTX,
	referralCode, referredID string,
) error {
	repo := s.newRepo(dbtx)

	a, err := repo.GetByReferralCode(ctx, referralCode)
	if err != nil {
		return err
	}

	if a.UserID == referredID {
		return fmt.Errorf("self referral: %w", core.ErrInvalidInput)
	}

	ref := &Referral{
		ID:          uuid.NewString(),
		AffiliateID: a.ID,
		ReferrerID:  a.UserID,
		ReferredID:  referredID,
		Status:      ReferralPending,
		ExpiresAt:   time.Now().Add(s.cfg.ReferralExpiry),
	}

	if err := repo.CreateReferral(ctx, ref); err != nil {
		return err
	}

	a.ActiveReferrals++
	return repo.UpdateAffiliate(ctx, a)
}

// CompleteForReferred settles the referred user's pending referral inside
// the upgrade transaction. The referral count is bumped and the tier
// recomputed first, so the reward is paid at the rate the new count earns.
// No pending referral, or one already past its window, is not an error.
func (s *Service) CompleteForReferred(
	ctx context.Context,
	dbtx core.DBTX,
	referredID string,
	now time.Time,
) error {
	repo := s.newRepo(dbtx)

	ref, err := repo.GetPendingByReferredID(ctx, referredID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if ref.ApplyExpiry(now) {
		return repo.UpdateReferral(ctx, ref)
	}

	a, err := repo.GetByID(ctx, ref.AffiliateID)
	if err != nil {
		return err
	}

	a.TotalReferrals++
	a.Tier = TierForReferrals(a.TotalReferrals)
	reward := RewardForTier(a.Tier)

	if !ref.Complete(now, reward) {
		return nil
	}

	a.TotalEarnings += reward
	a.AvailableCredits += reward
	if a.ActiveReferrals > 0 {
		a.ActiveReferrals--
	}

	if err := repo.UpdateReferral(ctx, ref); err != nil {
		return err
	}
	if err := repo.UpdateAffiliate(ctx, a); err != nil {
		return err
	}

	return repo.CreditUser(ctx, a.UserID, reward)
}

// Dashboard assembles the caller's affiliate view. Overdue pending
// referrals are swept first so the stats reflect current reality.
func (s *Service) Dashboard(
	ctx context.Context,
	userID string,
) (*DashboardResponse, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.ExpireOverdueReferrals(ctx, a.ID, time.Now()); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountReferralsByStatus(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	// The sweep may have expired referrals the counter still includes.
	if a.ActiveReferrals != counts[ReferralPending] {
		a.ActiveReferrals = counts[ReferralPending]
		if err := s.repo.UpdateAffiliate(ctx, a); err != nil {
			return nil, err
		}
	}

	recent, err := s.repo.RecentReferrals(ctx, a.ID, recentReferrals)
	if err != nil {
		return nil, err
	}

	out := make([]ReferralResponse, 0, len(recent))
	for i := range recent {
		out = append(out, toReferralResponse(&recent[i]))
	}

	return &DashboardResponse{
		Affiliate: AffiliateResponse{
			ReferralCode:     a.ReferralCode,
			Tier:             a.Tier,
			RewardPerAction:  RewardForTier(a.Tier),
			TotalReferrals:   a.TotalReferrals,
			ActiveReferrals:  a.ActiveReferrals,
			TotalEarnings:    a.TotalEarnings,
			AvailableCredits: a.AvailableCredits,
			WithdrawnCredits: a.WithdrawnCredits,
			Stats: ReferralStats{
				Pending:   counts[ReferralPending],
				Completed: counts[ReferralCompleted],
				Expired:   counts[ReferralExpired],
			},
		},
		RecentReferrals: out,
	}, nil
}

// VerifyCode checks whether a referral code belongs to a real affiliate,
// for signup forms to validate before registration.
func (s *Service) VerifyCode(
	ctx context.Context,
	code string,
) (*VerifyCodeResponse, error) {
	a, err := s.repo.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return &VerifyCodeResponse{
		Valid:        true,
		ReferralCode: a.ReferralCode,
		Tier:         a.Tier,
	}, nil
}
