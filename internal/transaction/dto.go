// AngelaMos | 2026
// dto.go

package transaction

import (
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

type TransactionResponse struct {
	ID            string     `json:"id"`
	BuyerID       string     `json:"buyerId"`
	SellerID      *string    `json:"sellerId,omitempty"`
	ListingID     *string    `json:"listingId,omitempty"`
	Type          string     `json:"type"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	RefundedAt    *time.Time `json:"refundedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type ListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   core.Pagination       `json:"pagination"`
}

func ToTransactionResponse(t *Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		BuyerID:       t.BuyerID,
		SellerID:      t.SellerID,
		ListingID:     t.ListingID,
		Type:          t.Type,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Status:        t.Status,
		PaymentMethod: t.PaymentMethod,
		CompletedAt:   t.CompletedAt,
		RefundedAt:    t.RefundedAt,
		CreatedAt:     t.CreatedAt,
	}
}

func ToListResponse(items []Transaction, page, limit, total int) ListResponse {
	out := make([]TransactionResponse, 0, len(items))
	for i := range items {
		out = append(out, ToTransactionResponse(&items[i]))
	}
	return ListResponse{
		Transactions: out,
		Pagination:   core.NewPagination(page, limit, total),
	}
}
