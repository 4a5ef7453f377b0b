// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

type UpdateProfileRequest struct {
	Username    *string      `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	ContactInfo core.JSONMap `json:"contactInfo,omitempty"`
	Preferences core.JSONMap `json:"preferences,omitempty"`
}

type PremiumInfo struct {
	SubscriptionStart *time.Time `json:"subscriptionStart,omitempty"`
	SubscriptionEnd   *time.Time `json:"subscriptionEnd,omitempty"`
	AutoRenew         bool       `json:"autoRenew"`
	Features          []string   `json:"features"`
}

type UserResponse struct {
	ID             string       `json:"id"`
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	AccountType    string       `json:"accountType"`
	Credits        float64      `json:"credits"`
	ProfilePicture *string      `json:"profilePicture,omitempty"`
	ContactInfo    core.JSONMap `json:"contactInfo"`
	Preferences    core.JSONMap `json:"preferences"`
	Premium        *PremiumInfo `json:"premium,omitempty"`
	LastLogin      *time.Time   `json:"lastLogin,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type UpgradeResponse struct {
	Message     string       `json:"message"`
	User        UserResponse `json:"user"`
	Transaction any          `json:"transaction,omitempty"`
}

// ToUserResponse strips the password hash; it is the only projection the
// API ever returns for a user.
func ToUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		AccountType:    u.AccountType,
		Credits:        u.Credits,
		ProfilePicture: u.ProfilePicture,
		ContactInfo:    u.ContactInfo,
		Preferences:    u.Preferences,
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}

	if u.PremiumStart != nil || u.PremiumEnd != nil {
		resp.Premium = &PremiumInfo{
			SubscriptionStart: u.PremiumStart,
			SubscriptionEnd:   u.PremiumEnd,
			AutoRenew:         u.PremiumAutoRenew,
			Features:          []string(u.PremiumFeatures),
		}
	}

	return resp
}
