// AngelaMos | 2026
// entity.go

package transaction

import (
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

type Transaction struct {
	ID            string       `db:"id"`
	BuyerID       string       `db:"buyer_id"`
	SellerID      *string      `db:"seller_id"`
	ListingID     *string      `db:"listing_id"`
	Type          string       `db:"type"`
	Amount        float64      `db:"amount"`
	Currency      string       `db:"currency"`
	Status        string       `db:"status"`
	PaymentMethod string       `db:"payment_method"`
	PaymentID     string       `db:"payment_id"`
	CompletedAt   *time.Time   `db:"completed_at"`
	RefundedAt    *time.Time   `db:"refunded_at"`
	Metadata      core.JSONMap `db:"metadata"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

const (
	TypeUpgrade  = "premium_upgrade"
	TypePurchase = "listing_purchase"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

func (t *Transaction) IsBuyer(userID string) bool {
	return t.BuyerID == userID
}

// Complete settles a pending transaction. The completion timestamp is set
// exactly once; anything not pending is left alone. Reports whether the
// status changed.
func (t *Transaction) Complete(now time.Time) bool {
	if t.Status != StatusPending {
		return false
	}

	t.Status = StatusCompleted
	at := now
	t.CompletedAt = &at
	return true
}

// Refund reverses a settled transaction. Only completed transactions can
// be refunded; pending ones are cancelled instead, and a refund never
// happens twice.
func (t *Transaction) Refund(now time.Time) bool {
	if t.Status != StatusCompleted {
		return false
	}

	t.Status = StatusRefunded
	at := now
	t.RefundedAt = &at
	return true
}
