// AngelaMos | 2026
// service_test.go

package affiliate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uknown-one/stellarAds/internal/config"
	"github.com/uknown-one/stellarAds/internal/core"
)

type fakeRepo struct {
	affiliates map[string]*Affiliate // keyed by id
	referrals  map[string]*Referral  // keyed by referred id
	credits    map[string]float64
	codeTaken  map[string]int // remaining collisions per code prefix
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		affiliates: map[string]*Affiliate{},
		referrals:  map[string]*Referral{},
		credits:    map[string]float64{},
	}
}

func (f *fakeRepo) CreateAffiliate(_ context.Context, a *Affiliate) error {
	for _, existing := range f.affiliates {
		if existing.ReferralCode == a.ReferralCode {
			return core.ErrDuplicateKey
		}
		if existing.UserID == a.UserID {
			return core.ErrDuplicateKey
		}
	}
	if f.codeTaken != nil && f.codeTaken["collisions"] > 0 {
		f.codeTaken["collisions"]--
		return core.ErrDuplicateKey
	}
	clone := *a
	f.affiliates[a.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Affiliate, error) {
	a, ok := f.affiliates[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeRepo) GetByUserID(
	_ context.Context,
	userID string,
) (*Affiliate, error) {
	for _, a := range f.affiliates {
		if a.UserID == userID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) GetByReferralCode(
	_ context.Context,
	code string,
) (*Affiliate, error) {
	for _, a := range f.affiliates {
		if a.ReferralCode == code {
			clone := *a
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) UpdateAffiliate(_ context.Context, a *Affiliate) error {
	if _, ok := f.affiliates[a.ID]; !ok {
		return core.ErrNotFound
	}
	clone := *a
	f.affiliates[a.ID] = &clone
	return nil
}

func (f *fakeRepo) CreateReferral(_ context.Context, ref *Referral) error {
	if _, ok := f.referrals[ref.ReferredID]; ok {
		return core.ErrDuplicateKey
	}
	clone := *ref
	f.referrals[ref.ReferredID] = &clone
	return nil
}

func (f *fakeRepo) GetPendingByReferredID(
	_ context.Context,
	referredID string,
) (*Referral, error) {
	ref, ok := f.referrals[referredID]
	if !ok || ref.Status != ReferralPending {
		return nil, core.ErrNotFound
	}
	clone := *ref
	return &clone, nil
}

func (f *fakeRepo) UpdateReferral(_ context.Context, ref *Referral) error {
	if _, ok := f.referrals[ref.ReferredID]; !ok {
		return core.ErrNotFound
	}
	clone := *ref
	f.referrals[ref.ReferredID] = &clone
	return nil
}

func (f *fakeRepo) RecentReferrals(
	_ context.Context,
	affiliateID string,
	limit int,
) ([]Referral, error) {
	out := []Referral{}
	for _, ref := range f.referrals {
		if ref.AffiliateID == affiliateID && len(out) < limit {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountReferralsByStatus(
	_ context.Context,
	affiliateID string,
) (map[string]int, error) {
	counts := map[string]int{
		ReferralPending:   0,
		ReferralCompleted: 0,
		ReferralExpired:   0,
	}
	for _, ref := range f.referrals {
		if ref.AffiliateID == affiliateID {
			counts[ref.Status]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) ExpireOverdueReferrals(
	_ context.Context,
	affiliateID string,
	now time.Time,
) (int64, error) {
	var n int64
	for _, ref := range f.referrals {
		if ref.AffiliateID == affiliateID && ref.ApplyExpiry(now) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreditUser(
	_ context.Context,
	userID string,
	amount float64,
) error {
	f.credits[userID] += amount
	return nil
}

func testConfig() config.MarketplaceConfig {
	return config.MarketplaceConfig{
		ReferralExpiry:     720 * time.Hour,
		ReferralCodeLength: 8,
		Currency:           "STELLAR",
	}
}

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo, testConfig())
	svc.newRepo = func(core.DBTX) Repository { return repo }
	return svc
}

func TestProvisionWithTx(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	if err := svc.ProvisionWithTx(context.Background(), nil, "u1"); err != nil {
		t.Fatalf("ProvisionWithTx: %v", err)
	}

	a, err := repo.GetByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}

	if a.Tier != TierBronze {
		t.Errorf("tier = %q, want bronze", a.Tier)
	}
	if len(a.ReferralCode) != 8 {
		t.Errorf("len(code) = %d, want 8", len(a.ReferralCode))
	}
}

func TestProvisionWithTxRetriesCollisions(t *testing.T) {
	repo := newFakeRepo()
	repo.codeTaken = map[string]int{"collisions": 2}
	svc := newTestService(repo)

	if err := svc.ProvisionWithTx(context.Background(), nil, "u1"); err != nil {
		t.Fatalf("ProvisionWithTx with collisions: %v", err)
	}

	if _, err := repo.GetByUserID(context.Background(), "u1"); err != nil {
		t.Fatalf("affiliate missing after retries: %v", err)
	}
}

func TestCreateReferralWithTx(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "referrer"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "referrer")

	err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "new-user")
	if err != nil {
		t.Fatalf("CreateReferralWithTx: %v", err)
	}

	ref, err := repo.GetPendingByReferredID(ctx, "new-user")
	if err != nil {
		t.Fatalf("referral missing: %v", err)
	}
	if ref.AffiliateID != a.ID {
		t.Errorf("affiliateID = %q, want %q", ref.AffiliateID, a.ID)
	}
	if ref.ReferrerID != "referrer" {
		t.Errorf("referrerID = %q, want referrer", ref.ReferrerID)
	}
	if !ref.ExpiresAt.After(time.Now()) {
		t.Error("referral window is not in the future")
	}

	a, _ = repo.GetByUserID(ctx, "referrer")
	if a.ActiveReferrals != 1 {
		t.Errorf("activeReferrals = %d, want 1", a.ActiveReferrals)
	}
}

func TestCreateReferralWithTxUnknownCode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	err := svc.CreateReferralWithTx(
		context.Background(), nil, "NOSUCHCODE", "new-user",
	)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateReferralWithTxSelfReferral(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "u1"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "u1")

	err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "u1")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateReferralWithTxOnlyOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "referrer"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "referrer")

	if err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "new-user"); err != nil {
		t.Fatalf("first referral: %v", err)
	}

	err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "new-user")
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestCompleteForReferred(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	now := time.Now()

	if err := svc.ProvisionWithTx(ctx, nil, "referrer"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "referrer")

	if err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "new-user"); err != nil {
		t.Fatalf("create referral: %v", err)
	}

	if err := svc.CompleteForReferred(ctx, nil, "new-user", now); err != nil {
		t.Fatalf("CompleteForReferred: %v", err)
	}

	ref := repo.referrals["new-user"]
	if ref.Status != ReferralCompleted {
		t.Errorf("status = %q, want completed", ref.Status)
	}
	if ref.RewardAmount != 20 {
		t.Errorf("reward = %v, want bronze 20", ref.RewardAmount)
	}
	if ref.CompletedAt == nil {
		t.Error("completedAt not set")
	}

	a, _ = repo.GetByUserID(ctx, "referrer")
	if a.TotalReferrals != 1 {
		t.Errorf("totalReferrals = %d, want 1", a.TotalReferrals)
	}
	if a.TotalEarnings != 20 {
		t.Errorf("totalEarnings = %v, want 20", a.TotalEarnings)
	}
	if a.AvailableCredits != 20 {
		t.Errorf("availableCredits = %v, want 20", a.AvailableCredits)
	}
	if a.ActiveReferrals != 0 {
		t.Errorf("activeReferrals = %d, want 0", a.ActiveReferrals)
	}
	if repo.credits["referrer"] != 20 {
		t.Errorf("credits = %v, want 20", repo.credits["referrer"])
	}
}

func TestCompleteForReferredNoPending(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	err := svc.CompleteForReferred(context.Background(), nil, "nobody", time.Now())
	if err != nil {
		t.Fatalf("CompleteForReferred without referral: %v", err)
	}
}

func TestCompleteForReferredExpiredWindow(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "referrer"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "referrer")

	if err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "new-user"); err != nil {
		t.Fatalf("create referral: %v", err)
	}

	// Qualifying action lands 31 days after signup; the 30-day window
	// is gone and the referral expires instead of completing.
	later := time.Now().Add(31 * 24 * time.Hour)
	if err := svc.CompleteForReferred(ctx, nil, "new-user", later); err != nil {
		t.Fatalf("CompleteForReferred: %v", err)
	}

	ref := repo.referrals["new-user"]
	if ref.Status != ReferralExpired {
		t.Errorf("status = %q, want expired", ref.Status)
	}
	if ref.CompletedAt != nil {
		t.Error("expired referral has a completion timestamp")
	}

	a, _ = repo.GetByUserID(ctx, "referrer")
	if a.TotalReferrals != 0 {
		t.Errorf("totalReferrals = %d, want 0", a.TotalReferrals)
	}
	if repo.credits["referrer"] != 0 {
		t.Errorf("credits = %v, want 0", repo.credits["referrer"])
	}
}

func TestCompleteForReferredTierBoundary(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "referrer"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "referrer")

	// The 50th completion crosses into silver; the reward is paid at
	// the new tier's rate.
	repo.affiliates[a.ID].TotalReferrals = 49
	repo.affiliates[a.ID].Tier = TierBronze

	if err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "u50"); err != nil {
		t.Fatalf("create referral: %v", err)
	}
	if err := svc.CompleteForReferred(ctx, nil, "u50", time.Now()); err != nil {
		t.Fatalf("CompleteForReferred: %v", err)
	}

	a, _ = repo.GetByUserID(ctx, "referrer")
	if a.Tier != TierSilver {
		t.Errorf("tier = %q, want silver", a.Tier)
	}
	if repo.referrals["u50"].RewardAmount != 35 {
		t.Errorf("reward = %v, want silver 35",
			repo.referrals["u50"].RewardAmount)
	}
}

func TestDashboard(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "u1"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "u1")

	if err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "friend"); err != nil {
		t.Fatalf("create referral: %v", err)
	}
	repo.referrals["friend"].ReferredUsername = "friendly_one"

	dash, err := svc.Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if dash.Affiliate.ReferralCode != a.ReferralCode {
		t.Errorf("code = %q, want %q", dash.Affiliate.ReferralCode, a.ReferralCode)
	}
	if dash.Affiliate.Tier != TierBronze {
		t.Errorf("tier = %q, want bronze", dash.Affiliate.Tier)
	}
	if dash.Affiliate.RewardPerAction != 20 {
		t.Errorf("rewardPerAction = %v, want 20", dash.Affiliate.RewardPerAction)
	}
	if dash.Affiliate.Stats.Pending != 1 {
		t.Errorf("pending = %d, want 1", dash.Affiliate.Stats.Pending)
	}
	if dash.Affiliate.ActiveReferrals != 1 {
		t.Errorf("activeReferrals = %d, want 1", dash.Affiliate.ActiveReferrals)
	}
	if len(dash.RecentReferrals) != 1 {
		t.Fatalf("recentReferrals = %d, want 1", len(dash.RecentReferrals))
	}
	if dash.RecentReferrals[0].ReferredUsername != "friendly_one" {
		t.Errorf("referredUsername = %q, want friendly_one",
			dash.RecentReferrals[0].ReferredUsername)
	}
}

func TestDashboardResyncsActiveReferrals(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "u1"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "u1")

	if err := svc.CreateReferralWithTx(ctx, nil, a.ReferralCode, "friend"); err != nil {
		t.Fatalf("create referral: %v", err)
	}

	// The friend never acts; the sweep expires the referral and the
	// counter is brought back in line with the real pending count.
	repo.referrals["friend"].ExpiresAt = time.Now().Add(-time.Hour)

	dash, err := svc.Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if dash.Affiliate.Stats.Expired != 1 {
		t.Errorf("expired = %d, want 1", dash.Affiliate.Stats.Expired)
	}
	if dash.Affiliate.ActiveReferrals != 0 {
		t.Errorf("activeReferrals = %d, want 0", dash.Affiliate.ActiveReferrals)
	}

	a, _ = repo.GetByUserID(ctx, "u1")
	if a.ActiveReferrals != 0 {
		t.Errorf("persisted activeReferrals = %d, want 0", a.ActiveReferrals)
	}
}

func TestDashboardMissingAffiliate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.Dashboard(context.Background(), "nobody")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVerifyCode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.ProvisionWithTx(ctx, nil, "u1"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	a, _ := repo.GetByUserID(ctx, "u1")

	resp, err := svc.VerifyCode(ctx, a.ReferralCode)
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if !resp.Valid {
		t.Error("valid code reported invalid")
	}

	if _, err := svc.VerifyCode(ctx, "NOSUCHCODE"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
