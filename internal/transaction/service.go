// AngelaMos | 2026
// service.go

package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/uknown-one/stellarAds/internal/core"
)

type Service struct {
	repo Repository

	// newRepo binds a repository to the transaction handed in by the
	// caller of the Record methods.
	newRepo func(core.DBTX) Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, newRepo: NewRepository}
}

// RecordUpgrade writes the settled payment for a premium upgrade inside
// the caller's transaction scope. Upgrades settle immediately; there is no
// counterparty.
func (s *Service) RecordUpgrade(
	ctx context.Context,
	dbtx core.DBTX,
	buyerID string,
	amount float64,
	currency, paymentMethod, paymentID string,
) (string, error) {
	now := time.Now()

	t := &Transaction{
		ID:            uuid.NewString(),
		BuyerID:       buyerID,
		Type:          TypeUpgrade,
		Amount:        amount,
		Currency:      currency,
		Status:        StatusCompleted,
		PaymentMethod: paymentMethod,
		PaymentID:     paymentID,
		CompletedAt:   &now,
	}

	if err := s.newRepo(dbtx).Create(ctx, t); err != nil {
		return "", err
	}

	return t.ID, nil
}

// RecordPurchase writes the settled sale of a listing inside the caller's
// transaction scope.
func (s *Service) RecordPurchase(
	ctx context.Context,
	dbtx core.DBTX,
	buyerID, sellerID, listingID string,
	amount float64,
	currency string,
) (string, error) {
	now := time.Now()

	t := &Transaction{
		ID:          uuid.NewString(),
		BuyerID:     buyerID,
		SellerID:    &sellerID,
		ListingID:   &listingID,
		Type:        TypePurchase,
		Amount:      amount,
		Currency:    currency,
		Status:      StatusCompleted,
		CompletedAt: &now,
	}

	if err := s.newRepo(dbtx).Create(ctx, t); err != nil {
		return "", err
	}

	return t.ID, nil
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	page, limit int,
) ([]Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return s.repo.ListByUser(ctx, userID, page, limit)
}

// Refund reverses one of the caller's own completed payments. Only the
// buyer can ask for a refund, and only a completed transaction qualifies.
func (s *Service) Refund(
	ctx context.Context,
	userID, id string,
) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.IsBuyer(userID) {
		return nil, core.ForbiddenError(
			"you can only refund your own transactions",
		)
	}

	if !t.Refund(time.Now()) {
		return nil, core.ValidationError(
			"only completed transactions can be refunded",
		)
	}

	if err := s.repo.UpdateStatus(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}
