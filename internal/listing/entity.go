// AngelaMos | 2026
// entity.go

package listing

import (
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

type Listing struct {
	ID                 string           `db:"id"`
	UserID             string           `db:"user_id"`
	Title              string           `db:"title"`
	Description        string           `db:"description"`
	Price              float64          `db:"price"`
	Currency           string           `db:"currency"`
	Category           string           `db:"category"`
	Subcategory        *string          `db:"subcategory"`
	Condition          string           `db:"condition"`
	Images             core.StringSlice `db:"images"`
	Status             string           `db:"status"`
	IsPremium          bool             `db:"is_premium"`
	PremiumFeatures    core.JSONMap     `db:"premium_features"`
	Location           core.JSONMap     `db:"location"`
	ContactPreferences core.JSONMap     `db:"contact_preferences"`
	Views              int              `db:"views"`
	Favorites          int              `db:"favorites"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
	ExpiresAt          time.Time        `db:"expires_at"`
	Metadata           core.JSONMap     `db:"metadata"`

	// OwnerUsername is populated by list/detail queries via join.
	OwnerUsername string `db:"owner_username"`
}

const (
	StatusActive  = "active"
	StatusSold    = "sold"
	StatusExpired = "expired"
	StatusDraft   = "draft"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusSold, StatusExpired, StatusDraft:
		return true
	}
	return false
}

func (l *Listing) IsOwnedBy(userID string) bool {
	return l.UserID == userID
}

// ApplyExpiry flips an active listing past its deadline to expired. The
// transition is one-way: sold, draft, and already-expired listings are
// never touched, and nothing un-expires automatically. Reports whether the
// status changed so callers know to persist.
func (l *Listing) ApplyExpiry(now time.Time) bool {
	if l.Status != StatusActive {
		return false
	}
	if !l.ExpiresAt.Before(now) {
		return false
	}

	l.Status = StatusExpired
	return true
}

func (l *Listing) TimeRemaining(now time.Time) time.Duration {
	if remaining := l.ExpiresAt.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}
