// AngelaMos | 2026
// dto.go

package affiliate

import (
	"time"
)

type VerifyCodeRequest struct {
	ReferralCode string `json:"referralCode" validate:"required,max=32"`
}

type VerifyCodeResponse struct {
	Valid        bool   `json:"valid"`
	ReferralCode string `json:"referralCode"`
	Tier         string `json:"tier"`
}

type ReferralResponse struct {
	ID               string     `json:"id"`
	ReferredID       string     `json:"referredId"`
	ReferredUsername string     `json:"referredUsername,omitempty"`
	Status           string     `json:"status"`
	RewardAmount     float64    `json:"rewardAmount"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type ReferralStats struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Expired   int `json:"expired"`
}

type AffiliateResponse struct {
	ReferralCode     string        `json:"referralCode"`
	Tier             string        `json:"tier"`
	RewardPerAction  float64       `json:"rewardPerAction"`
	TotalReferrals   int           `json:"totalReferrals"`
	ActiveReferrals  int           `json:"activeReferrals"`
	TotalEarnings    float64       `json:"totalEarnings"`
	AvailableCredits float64       `json:"availableCredits"`
	WithdrawnCredits float64       `json:"withdrawnCredits"`
	Stats            ReferralStats `json:"stats"`
}

type DashboardResponse struct {
	Affiliate       AffiliateResponse  `json:"affiliate"`
	RecentReferrals []ReferralResponse `json:"recentReferrals"`
}

func toReferralResponse(r *Referral) ReferralResponse {
	return ReferralResponse{
		ID:               r.ID,
		ReferredID:       r.ReferredID,
		ReferredUsername: r.ReferredUsername,
		Status:           r.Status,
		RewardAmount:     r.RewardAmount,
		CompletedAt:      r.CompletedAt,
		ExpiresAt:        r.ExpiresAt,
		CreatedAt:        r.CreatedAt,
	}
}
