// AngelaMos | 2026
// service_test.go

package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uknown-one/stellarAds/internal/config"
	"github.com/uknown-one/stellarAds/internal/core"
	"github.com/uknown-one/stellarAds/internal/user"
)

type fakeRepo struct {
	listings map[string]*Listing
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{listings: map[string]*Listing{}}
}

func (f *fakeRepo) Create(_ context.Context, l *Listing) error {
	clone := *l
	f.listings[l.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (f *fakeRepo) ViewAndGet(_ context.Context, id string) (*Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	l.Views++
	clone := *l
	return &clone, nil
}

func (f *fakeRepo) List(
	_ context.Context,
	params ListParams,
) ([]Listing, int, error) {
	out := []Listing{}
	for _, l := range f.listings {
		if params.Status != "" && l.Status != params.Status {
			continue
		}
		if params.Category != "" && l.Category != params.Category {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, l *Listing) error {
	if _, ok := f.listings[l.ID]; !ok {
		return core.ErrNotFound
	}
	clone := *l
	f.listings[l.ID] = &clone
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.listings[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id, status string) error {
	l, ok := f.listings[id]
	if !ok {
		return core.ErrNotFound
	}
	l.Status = status
	return nil
}

func (f *fakeRepo) CountActiveByUser(
	_ context.Context,
	userID string,
	now time.Time,
) (int, error) {
	count := 0
	for _, l := range f.listings {
		if l.UserID == userID && l.Status == StatusActive &&
			l.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) ExpireOverdue(
	_ context.Context,
	now time.Time,
) (int64, error) {
	var n int64
	for _, l := range f.listings {
		if l.ApplyExpiry(now) {
			n++
		}
	}
	return n, nil
}

type fakeAccounts struct {
	types map[string]string
}

func (f *fakeAccounts) AccountType(
	_ context.Context,
	userID string,
) (string, error) {
	t, ok := f.types[userID]
	if !ok {
		return "", core.ErrNotFound
	}
	return t, nil
}

func testConfig() config.MarketplaceConfig {
	return config.MarketplaceConfig{
		ListingDuration:    720 * time.Hour,
		FreeListingCap:     3,
		ReferralExpiry:     720 * time.Hour,
		ReferralCodeLength: 8,
		PremiumPrice:       299,
		PremiumDuration:    8760 * time.Hour,
		Currency:           "STELLAR",
	}
}

func newTestService(repo Repository, accounts AccountReader) *Service {
	return NewService(nil, repo, accounts, nil, testConfig())
}

func validCreateRequest() CreateListingRequest {
	return CreateListingRequest{
		Title:       "Vintage telescope",
		Description: "A well kept refractor telescope with original tripod.",
		Price:       120,
		Category:    "hobbies",
	}
}

func TestCreateFreeAccountQuota(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, "u1", validCreateRequest()); err != nil {
			t.Fatalf("listing %d: %v", i+1, err)
		}
	}

	_, err := svc.Create(ctx, "u1", validCreateRequest())
	if err == nil {
		t.Fatal("fourth active listing accepted for free account")
	}

	var appErr *core.AppError
	if !errors.As(err, &appErr) || appErr.Code != core.CodeQuotaExceeded {
		t.Fatalf("err = %v, want quota_exceeded", err)
	}
}

func TestCreatePremiumAccountUnlimited(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountPremium}}
	svc := newTestService(repo, accounts)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, "u1", validCreateRequest()); err != nil {
			t.Fatalf("listing %d: %v", i+1, err)
		}
	}
}

func TestCreateQuotaIgnoresInactiveListings(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		l, err := svc.Create(ctx, "u1", validCreateRequest())
		if err != nil {
			t.Fatalf("listing %d: %v", i+1, err)
		}
		if i < 2 {
			repo.listings[l.ID].Status = StatusSold
		}
	}

	// Only one active listing left; the cap counts active only.
	if _, err := svc.Create(ctx, "u1", validCreateRequest()); err != nil {
		t.Fatalf("create after sales: %v", err)
	}
}

func TestCreateQuotaIgnoresLapsedListings(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l, err := svc.Create(ctx, "u1", validCreateRequest())
		if err != nil {
			t.Fatalf("listing %d: %v", i+1, err)
		}
		// Past its window but nothing has swept the status yet.
		repo.listings[l.ID].ExpiresAt = time.Now().Add(-time.Hour)
	}

	if _, err := svc.Create(ctx, "u1", validCreateRequest()); err != nil {
		t.Fatalf("create with only lapsed listings: %v", err)
	}
}

func TestCreateDropsPremiumFeaturesForFreeAccounts(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{
		"free-u":    user.AccountFree,
		"premium-u": user.AccountPremium,
	}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	req := validCreateRequest()
	req.PremiumFeatures = core.JSONMap{"highlighted": true}

	l, err := svc.Create(ctx, "free-u", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(l.PremiumFeatures) != 0 {
		t.Errorf("free account kept premium features: %v", l.PremiumFeatures)
	}
	if l.IsPremium {
		t.Error("free account listing flagged premium")
	}

	l, err = svc.Create(ctx, "premium-u", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !l.IsPremium {
		t.Error("premium account listing not flagged premium")
	}
	if l.PremiumFeatures["highlighted"] != true {
		t.Errorf("premium features lost: %v", l.PremiumFeatures)
	}
}

func TestCreateDefaults(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)

	before := time.Now()
	l, err := svc.Create(context.Background(), "u1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if l.Currency != "STELLAR" {
		t.Errorf("currency = %q, want STELLAR", l.Currency)
	}
	if l.Status != StatusActive {
		t.Errorf("status = %q, want active", l.Status)
	}

	wantExpiry := before.Add(720 * time.Hour)
	if l.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) ||
		l.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiresAt = %v, want about %v", l.ExpiresAt, wantExpiry)
	}
}

func TestGetCountsViewsAndExpires(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	l, err := svc.Create(ctx, "u1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, l.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}

	got, err = svc.Get(ctx, l.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != 2 {
		t.Errorf("views = %d, want 2", got.Views)
	}

	repo.listings[l.ID].ExpiresAt = time.Now().Add(-time.Hour)

	got, err = svc.Get(ctx, l.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusExpired {
		t.Errorf("status = %q, want expired", got.Status)
	}
	if repo.listings[l.ID].Status != StatusExpired {
		t.Error("expiry was not persisted")
	}
}

func TestUpdateOwnershipEnforced(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{
		"owner": user.AccountFree,
		"other": user.AccountFree,
	}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	l, err := svc.Create(ctx, "owner", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Updated telescope title"
	_, err = svc.Update(ctx, "other", l.ID, UpdateListingRequest{Title: &title})
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(
		ctx, "owner", l.ID, UpdateListingRequest{Title: &title},
	)
	if err != nil {
		t.Fatalf("update as owner: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
}

func TestUpdateMergesOpaqueMaps(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	req := validCreateRequest()
	req.Location = core.JSONMap{"city": "Lisbon", "country": "PT"}
	req.ContactPreferences = core.JSONMap{"email": true, "phone": false}
	l, err := svc.Create(ctx, "u1", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, "u1", l.ID, UpdateListingRequest{
		Location:           core.JSONMap{"city": "Porto"},
		ContactPreferences: core.JSONMap{"phone": true},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Location["city"] != "Porto" {
		t.Errorf("city = %v, want Porto", updated.Location["city"])
	}
	if updated.Location["country"] != "PT" {
		t.Errorf("country dropped by partial update: %v", updated.Location)
	}
	if updated.ContactPreferences["phone"] != true {
		t.Errorf("phone = %v, want true", updated.ContactPreferences["phone"])
	}
	if updated.ContactPreferences["email"] != true {
		t.Errorf("email dropped by partial update: %v", updated.ContactPreferences)
	}
}

func TestDeleteOwnershipEnforced(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{
		"owner": user.AccountFree,
	}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	l, err := svc.Create(ctx, "owner", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "other", l.ID); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	if err := svc.Delete(ctx, "owner", l.ID); err != nil {
		t.Fatalf("delete as owner: %v", err)
	}

	if _, err := svc.Get(ctx, l.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestRenewReactivatesExpired(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	l, err := svc.Create(ctx, "u1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.listings[l.ID].Status = StatusExpired
	repo.listings[l.ID].ExpiresAt = time.Now().Add(-time.Hour)

	renewed, err := svc.Renew(ctx, "u1", l.ID)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if renewed.Status != StatusActive {
		t.Errorf("status = %q, want active", renewed.Status)
	}
	if !renewed.ExpiresAt.After(time.Now()) {
		t.Error("renewed deadline is not in the future")
	}
}

func TestRenewSoldListingRejected(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	l, err := svc.Create(ctx, "u1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.listings[l.ID].Status = StatusSold

	_, err = svc.Renew(ctx, "u1", l.ID)
	var appErr *core.AppError
	if !errors.As(err, &appErr) || appErr.Code != core.CodeValidationError {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestListSweepsOverdue(t *testing.T) {
	repo := newFakeRepo()
	accounts := &fakeAccounts{types: map[string]string{"u1": user.AccountFree}}
	svc := newTestService(repo, accounts)
	ctx := context.Background()

	l, err := svc.Create(ctx, "u1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.listings[l.ID].ExpiresAt = time.Now().Add(-time.Hour)

	active, _, err := svc.List(ctx, ListParams{Status: StatusActive})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("overdue listing still returned as active: %v", active)
	}

	expired, _, err := svc.List(ctx, ListParams{Status: StatusExpired})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expired) != 1 {
		t.Errorf("expired listings = %d, want 1", len(expired))
	}
}
