// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

type User struct {
	ID               string           `db:"id"`
	Username         string           `db:"username"`
	Email            string           `db:"email"`
	PasswordHash     string           `db:"password_hash"`
	AccountType      string           `db:"account_type"`
	Credits          float64          `db:"credits"`
	LastLogin        *time.Time       `db:"last_login"`
	ProfilePicture   *string          `db:"profile_picture"`
	ContactInfo      core.JSONMap     `db:"contact_info"`
	Preferences      core.JSONMap     `db:"preferences"`
	PremiumStart     *time.Time       `db:"premium_start"`
	PremiumEnd       *time.Time       `db:"premium_end"`
	PremiumAutoRenew bool             `db:"premium_auto_renew"`
	PremiumFeatures  core.StringSlice `db:"premium_features"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

const (
	AccountFree       = "free"
	AccountPremium    = "premium"
	AccountEnterprise = "enterprise"
)

func (u *User) IsPremium() bool {
	return u.AccountType == AccountPremium
}

func (u *User) IsPremiumActive(now time.Time) bool {
	if u.AccountType != AccountPremium {
		return false
	}
	if u.PremiumEnd == nil {
		return false
	}
	return u.PremiumEnd.After(now)
}

// ApplySubscriptionExpiry downgrades a lapsed premium account to free when
// auto-renew is off. Auto-renew accounts are left alone; billing renewal is
// not modeled here. Reports whether the account type changed so callers know
// to persist.
func (u *User) ApplySubscriptionExpiry(now time.Time) bool {
	if u.AccountType != AccountPremium {
		return false
	}
	if u.PremiumEnd == nil || !u.PremiumEnd.Before(now) {
		return false
	}
	if u.PremiumAutoRenew {
		return false
	}

	u.AccountType = AccountFree
	return true
}
