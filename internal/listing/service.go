// AngelaMos | 2026
// service.go

package listing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uknown-one/stellarAds/internal/config"
	"github.com/uknown-one/stellarAds/internal/core"
	"github.com/uknown-one/stellarAds/internal/user"
)

// PurchaseRecorder writes the sale transaction inside the purchase
// transaction scope. Implemented by the transaction service.
type PurchaseRecorder interface {
	RecordPurchase(
		ctx context.Context,
		dbtx core.DBTX,
		buyerID, sellerID, listingID string,
		amount float64,
		currency string,
	) (string, error)
}

// AccountReader resolves the caller's current account type, with the
// subscription-expiry downgrade already applied. Implemented by the user
// service.
type AccountReader interface {
	AccountType(ctx context.Context, userID string) (string, error)
}

type Service struct {
	db       *sqlx.DB
	repo     Repository
	accounts AccountReader
	txns     PurchaseRecorder
	cfg      config.MarketplaceConfig
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	accounts AccountReader,
	txns PurchaseRecorder,
	cfg config.MarketplaceConfig,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		accounts: accounts,
		txns:     txns,
		cfg:      cfg,
	}
}

// checkCreateQuota resolves the caller's tier and enforces the free-tier
// cap. Only listings still inside their window count; a lapsed listing
// frees its slot even before anything sweeps its status.
func (s *Service) checkCreateQuota(
	ctx context.Context,
	userID string,
) (isPremium bool, err error) {
	accountType, err := s.accounts.AccountType(ctx, userID)
	if err != nil {
		return false, err
	}

	isPremium = accountType != user.AccountFree
	if isPremium {
		return true, nil
	}

	active, err := s.repo.CountActiveByUser(ctx, userID, time.Now())
	if err != nil {
		return false, err
	}
	if active >= s.cfg.FreeListingCap {
		return false, core.QuotaExceededError(fmt.Sprintf(
			"free accounts are limited to %d active listings, upgrade to premium for unlimited listings",
			s.cfg.FreeListingCap,
		))
	}

	return false, nil
}

// EnsureCreateAllowed runs the quota check on its own. The handler calls
// it before validating the body, so a capped free account hears
// quota_exceeded rather than a field error.
func (s *Service) EnsureCreateAllowed(
	ctx context.Context,
	userID string,
) error {
	_, err := s.checkCreateQuota(ctx, userID)
	return err
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateListingRequest,
) (*Listing, error) {
	isPremium, err := s.checkCreateQuota(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	l := &Listing{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Title:              req.Title,
		Description:        req.Description,
		Price:              req.Price,
		Currency:           req.Currency,
		Category:           req.Category,
		Subcategory:        req.Subcategory,
		Condition:          req.Condition,
		Images:             core.StringSlice(req.Images),
		Status:             StatusActive,
		IsPremium:          isPremium,
		Location:           req.Location,
		ContactPreferences: req.ContactPreferences,
		Metadata:           req.Metadata,
		ExpiresAt:          now.Add(s.cfg.ListingDuration),
	}

	if l.Currency == "" {
		l.Currency = s.cfg.Currency
	}
	if l.Condition == "" {
		l.Condition = "good"
	}
	if l.Images == nil {
		l.Images = core.StringSlice{}
	}

	// Premium placement options are quietly dropped for free accounts
	// rather than rejected.
	if isPremium {
		l.PremiumFeatures = req.PremiumFeatures
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// Get returns a listing by id, counting the view. Expiry is applied lazily
// on read and persisted when the status flips.
func (s *Service) Get(ctx context.Context, id string) (*Listing, error) {
	l, err := s.repo.ViewAndGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.ApplyExpiry(time.Now()) {
		if err := s.repo.SetStatus(ctx, l.ID, l.Status); err != nil {
			slog.Warn("failed to persist listing expiry",
				"listing_id", l.ID,
				"error", err,
			)
		}
	}

	return l, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Listing, int, error) {
	params.Normalize()

	// Sweep overdue listings first so an active-status filter never
	// returns rows that are past their deadline.
	if _, err := s.repo.ExpireOverdue(ctx, time.Now()); err != nil {
		return nil, 0, err
	}

	return s.repo.List(ctx, params)
}

// EnsureOwner resolves the listing and rejects non-owners. The handler
// calls it before validating an update body, so a non-owner hears
// forbidden rather than a field error.
func (s *Service) EnsureOwner(ctx context.Context, userID, id string) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !l.IsOwnedBy(userID) {
		return core.ForbiddenError("you can only modify your own listings")
	}

	return nil
}

func (s *Service) Update(
	ctx context.Context,
	userID, id string,
	req UpdateListingRequest,
) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !l.IsOwnedBy(userID) {
		return nil, core.ForbiddenError("you can only modify your own listings")
	}

	l.ApplyExpiry(time.Now())

	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Category != nil {
		l.Category = *req.Category
	}
	if req.Subcategory != nil {
		l.Subcategory = req.Subcategory
	}
	if req.Condition != nil {
		l.Condition = *req.Condition
	}
	if req.Images != nil {
		l.Images = core.StringSlice(req.Images)
	}
	if req.Status != nil {
		l.Status = *req.Status
	}
	// Opaque maps are merged key-by-key; a partial update never drops
	// keys the caller did not send.
	if req.Location != nil {
		l.Location = l.Location.Merge(req.Location)
	}
	if req.ContactPreferences != nil {
		l.ContactPreferences = l.ContactPreferences.Merge(req.ContactPreferences)
	}
	if req.Metadata != nil {
		l.Metadata = l.Metadata.Merge(req.Metadata)
	}

	if req.PremiumFeatures != nil {
		accountType, err := s.accounts.AccountType(ctx, userID)
		if err != nil {
			return nil, err
		}
		if accountType != user.AccountFree {
			l.PremiumFeatures = l.PremiumFeatures.Merge(req.PremiumFeatures)
		}
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !l.IsOwnedBy(userID) {
		return core.ForbiddenError("you can only delete your own listings")
	}

	return s.repo.Delete(ctx, id)
}

// Renew pushes the deadline forward by a full listing period from now and
// reactivates an expired listing. Sold listings stay sold.
func (s *Service) Renew(
	ctx context.Context,
	userID, id string,
) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !l.IsOwnedBy(userID) {
		return nil, core.ForbiddenError("you can only renew your own listings")
	}

	if l.Status == StatusSold {
		return nil, core.ValidationError("sold listings cannot be renewed")
	}

	l.Status = StatusActive
	l.ExpiresAt = time.Now().Add(s.cfg.ListingDuration)

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// Purchase marks the listing sold and records the sale in one transaction.
func (s *Service) Purchase(
	ctx context.Context,
	buyerID, id string,
) (*Listing, string, error) {
	var (
		bought *Listing
		txnID  string
	)

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		l, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if l.IsOwnedBy(buyerID) {
			return core.ValidationError("you cannot purchase your own listing")
		}

		if l.ApplyExpiry(time.Now()) {
			if err := repo.SetStatus(ctx, l.ID, l.Status); err != nil {
				return err
			}
		}

		if l.Status != StatusActive {
			return core.ValidationError("listing is not available for purchase")
		}

		txnID, err = s.txns.RecordPurchase(
			ctx, tx, buyerID, l.UserID, l.ID, l.Price, l.Currency,
		)
		if err != nil {
			return err
		}

		if err := repo.SetStatus(ctx, l.ID, StatusSold); err != nil {
			return err
		}
		l.Status = StatusSold

		bought = l
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return bought, txnID, nil
}
