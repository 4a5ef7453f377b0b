// AngelaMos | 2026
// entity.go

package affiliate

import (
	"time"
)

type Affiliate struct {
	ID             string  `db:"id"`
	UserID         string  `db:"user_id"`
	ReferralCode   string  `db:"referral_code"`
	Tier           string  `db:"tier"`
	TotalReferrals int     `db:"total_referrals"`
	TotalEarnings  float64 `db:"total_earnings"`

	// ActiveReferrals counts pending referrals. It is bumped on create
	// and complete, and re-synced against the real count whenever the
	// dashboard sweeps expired referrals.
	ActiveReferrals int `db:"active_referrals"`

	// Earnings split: completed-referral rewards land in
	// AvailableCredits until paid out into WithdrawnCredits.
	AvailableCredits float64 `db:"available_credits"`
	WithdrawnCredits float64 `db:"withdrawn_credits"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Referral struct {
	ID           string     `db:"id"`
	AffiliateID  string     `db:"affiliate_id"`
	ReferrerID   string     `db:"referrer_id"`
	ReferredID   string     `db:"referred_id"`
	Status       string     `db:"status"`
	RewardAmount float64    `db:"reward_amount"`
	CompletedAt  *time.Time `db:"completed_at"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`

	// ReferredUsername is joined in for dashboard listings only; other
	// queries leave it empty.
	ReferredUsername string `db:"referred_username"`
}

const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

const (
	ReferralPending   = "pending"
	ReferralCompleted = "completed"
	ReferralExpired   = "expired"
)

const (
	goldThreshold   = 100
	silverThreshold = 50
)

// TierForReferrals maps a completed-referral count to a tier.
func TierForReferrals(n int) string {
	switch {
	case n >= goldThreshold:
		return TierGold
	case n >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// RewardForTier is the payout per completed referral at the given tier.
// Unknown tiers pay the bronze rate.
func RewardForTier(tier string) float64 {
	switch tier {
	case TierGold:
		return 50
	case TierSilver:
		return 35
	default:
		return 20
	}
}

// ApplyExpiry flips a pending referral past its window to expired.
// Completed referrals are never expired. Reports whether the status
// changed.
func (r *Referral) ApplyExpiry(now time.Time) bool {
	if r.Status != ReferralPending {
		return false
	}
	if !r.ExpiresAt.Before(now) {
		return false
	}

	r.Status = ReferralExpired
	return true
}

// Complete marks a pending referral completed at the given reward. The
// completion timestamp is set exactly once; calling Complete on anything
// but a pending referral is a no-op.
func (r *Referral) Complete(now time.Time, reward float64) bool {
	if r.Status != ReferralPending {
		return false
	}

	r.Status = ReferralCompleted
	r.RewardAmount = reward
	at := now
	r.CompletedAt = &at
	return true
}
