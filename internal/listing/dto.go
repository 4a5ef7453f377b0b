// AngelaMos | 2026
// dto.go

package listing

import (
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

type CreateListingRequest struct {
	Title              string       `json:"title" validate:"required,min=5,max=100"`
	Description        string       `json:"description" validate:"required,min=20,max=5000"`
	Price              float64      `json:"price" validate:"gte=0"`
	Currency           string       `json:"currency" validate:"omitempty,max=16"`
	Category           string       `json:"category" validate:"required,max=64"`
	Subcategory        *string      `json:"subcategory" validate:"omitempty,max=64"`
	Condition          string       `json:"condition" validate:"omitempty,oneof=new like_new good fair poor"`
	Images             []string     `json:"images" validate:"omitempty,max=12,dive,url"`
	Location           core.JSONMap `json:"location"`
	ContactPreferences core.JSONMap `json:"contactPreferences"`
	PremiumFeatures    core.JSONMap `json:"premiumFeatures"`
	Metadata           core.JSONMap `json:"metadata"`
}

type UpdateListingRequest struct {
	Title              *string      `json:"title" validate:"omitempty,min=5,max=100"`
	Description        *string      `json:"description" validate:"omitempty,min=20,max=5000"`
	Price              *float64     `json:"price" validate:"omitempty,gte=0"`
	Category           *string      `json:"category" validate:"omitempty,max=64"`
	Subcategory        *string      `json:"subcategory" validate:"omitempty,max=64"`
	Condition          *string      `json:"condition" validate:"omitempty,oneof=new like_new good fair poor"`
	Images             []string     `json:"images" validate:"omitempty,max=12,dive,url"`
	Status             *string      `json:"status" validate:"omitempty,oneof=active sold draft"`
	Location           core.JSONMap `json:"location"`
	ContactPreferences core.JSONMap `json:"contactPreferences"`
	PremiumFeatures    core.JSONMap `json:"premiumFeatures"`
	Metadata           core.JSONMap `json:"metadata"`
}

type PurchaseRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,max=32"`
}

type ListParams struct {
	Category string
	Status   string
	Sort     string
	Page     int
	Limit    int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps pagination and falls back to active listings sorted by
// premium placement first, newest second.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if !ValidStatus(p.Status) {
		p.Status = StatusActive
	}
	switch p.Sort {
	case "price_asc", "price_desc", "newest", "oldest":
	default:
		p.Sort = ""
	}
}

type OwnerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type ListingResponse struct {
	ID                 string       `json:"id"`
	User               OwnerInfo    `json:"user"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Price              float64      `json:"price"`
	Currency           string       `json:"currency"`
	Category           string       `json:"category"`
	Subcategory        *string      `json:"subcategory,omitempty"`
	Condition          string       `json:"condition"`
	Images             []string     `json:"images"`
	Status             string       `json:"status"`
	IsPremium          bool         `json:"isPremium"`
	PremiumFeatures    core.JSONMap `json:"premiumFeatures,omitempty"`
	Location           core.JSONMap `json:"location,omitempty"`
	ContactPreferences core.JSONMap `json:"contactPreferences,omitempty"`
	Views              int          `json:"views"`
	Favorites          int          `json:"favorites"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	ExpiresAt          time.Time    `json:"expiresAt"`
	Metadata           core.JSONMap `json:"metadata,omitempty"`
}

type ListResponse struct {
	Listings   []ListingResponse `json:"listings"`
	Pagination core.Pagination   `json:"pagination"`
}

type PurchaseResponse struct {
	Message       string          `json:"message"`
	TransactionID string          `json:"transactionId"`
	Listing       ListingResponse `json:"listing"`
}

func ToListingResponse(l *Listing) ListingResponse {
	return ListingResponse{
		ID:                 l.ID,
		User:               OwnerInfo{ID: l.UserID, Username: l.OwnerUsername},
		Title:              l.Title,
		Description:        l.Description,
		Price:              l.Price,
		Currency:           l.Currency,
		Category:           l.Category,
		Subcategory:        l.Subcategory,
		Condition:          l.Condition,
		Images:             []string(l.Images),
		Status:             l.Status,
		IsPremium:          l.IsPremium,
		PremiumFeatures:    l.PremiumFeatures,
		Location:           l.Location,
		ContactPreferences: l.ContactPreferences,
		Views:              l.Views,
		Favorites:          l.Favorites,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
		ExpiresAt:          l.ExpiresAt,
		Metadata:           l.Metadata,
	}
}

func ToListResponse(items []Listing, page, limit, total int) ListResponse {
	out := make([]ListingResponse, 0, len(items))
	for i := range items {
		out = append(out, ToListingResponse(&items[i]))
	}
	return ListResponse{
		Listings:   out,
		Pagination: core.NewPagination(page, limit, total),
	}
}
