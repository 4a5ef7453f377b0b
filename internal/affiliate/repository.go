// AngelaMos | 2026
// repository.go

package affiliate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/uknown-one/stellarAds/internal/core"
)

const affiliateColumns = `
	id, user_id, referral_code, tier, total_referrals, total_earnings,
	active_referrals, available_credits, withdrawn_credits,
	created_at, updated_at`

const referralColumns = `
	id, affiliate_id, referrer_id, referred_id, status, reward_amount,
	completed_at, expires_at, created_at`

type Repository interface {
	CreateAffiliate(ctx context.Context, a *Affiliate) error
	GetByID(ctx context.Context, id string) (*Affiliate, error)
	GetByUserID(ctx context.Context, userID string) (*Affiliate, error)
	GetByReferralCode(ctx context.Context, code string) (*Affiliate, error)
	UpdateAffiliate(ctx context.Context, a *Affiliate) error

	CreateReferral(ctx context.Context, ref *Referral) error
	GetPendingByReferredID(
		ctx context.Context,
		referredID string,
	) (*Referral, error)
	UpdateReferral(ctx context.Context, ref *Referral) error
	RecentReferrals(
		ctx context.Context,
		affiliateID string,
		limit int,
	) ([]Referral, error)
	CountReferralsByStatus(
		ctx context.Context,
		affiliateID string,
	) (map[string]int, error)
	ExpireOverdueReferrals(
		ctx context.Context,
		affiliateID string,
		now time.Time,
	) (int64, error)

	CreditUser(ctx context.Context, userID string, amount float64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAffiliate(ctx context.Context, a *Affiliate) error {
	query := `
		INSERT INTO affiliates (id, user_id, referral_code, tier)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, a, query,
		a.ID,
		a.UserID,
		a.ReferralCode,
		a.Tier,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create affiliate: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create affiliate: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Affiliate, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM affiliates WHERE id = $1`,
		affiliateColumns,
	)

	var a Affiliate
	err := r.db.GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get affiliate: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get affiliate: %w", err)
	}

	return &a, nil
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID string,
) (*Affiliate, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM affiliates WHERE user_id = $1`,
		affiliateColumns,
	)

	var a Affiliate
	err := r.db.GetContext(ctx, &a, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get affiliate: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get affiliate: %w", err)
	}

	return &a, nil
}

func (r *repository) GetByReferralCode(
	ctx context.Context,
	code string,
) (*Affiliate, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM affiliates WHERE referral_code = $1`,
		affiliateColumns,
	)

	var a Affiliate
	err := r.db.GetContext(ctx, &a, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get affiliate by code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get affiliate by code: %w", err)
	}

	return &a, nil
}

func (r *repository) UpdateAffiliate(ctx context.Context, a *Affiliate) error {
	query := `
		UPDATE affiliates
		SET tier = $2, total_referrals = $3, total_earnings = $4,
		    active_referrals = $5, available_credits = $6,
		    withdrawn_credits = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &a.UpdatedAt, query,
		a.ID,
		a.Tier,
		a.TotalReferrals,
		a.TotalEarnings,
		a.ActiveReferrals,
		a.AvailableCredits,
		a.WithdrawnCredits,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update affiliate: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update affiliate: %w", err)
	}

	return nil
}

// CreateReferral inserts a pending referral. The referred user can only
// ever be referred once; the unique index on referred_id surfaces as
// ErrDuplicateKey.
func (r *repository) CreateReferral(ctx context.Context, ref *Referral) error {
	query := `
		INSERT INTO referrals (
			id, affiliate_id, referrer_id, referred_id, status, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &ref.CreatedAt, query,
		ref.ID,
		ref.AffiliateID,
		ref.ReferrerID,
		ref.ReferredID,
		ref.Status,
		ref.ExpiresAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create referral: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create referral: %w", err)
	}

	return nil
}

func (r *repository) GetPendingByReferredID(
	ctx context.Context,
	referredID string,
) (*Referral, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM referrals
		WHERE referred_id = $1 AND status = $2`,
		referralColumns,
	)

	var ref Referral
	err := r.db.GetContext(ctx, &ref, query, referredID, ReferralPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get pending referral: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get pending referral: %w", err)
	}

	return &ref, nil
}

func (r *repository) UpdateReferral(ctx context.Context, ref *Referral) error {
	query := `
		UPDATE referrals
		SET status = $2, reward_amount = $3, completed_at = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		ref.ID,
		ref.Status,
		ref.RewardAmount,
		ref.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update referral: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update referral: %w", core.ErrNotFound)
	}

	return nil
}

// RecentReferrals lists the newest referrals for a dashboard, with the
// referred user's username joined in.
func (r *repository) RecentReferrals(
	ctx context.Context,
	affiliateID string,
	limit int,
) ([]Referral, error) {
	query := `
		SELECT
			r.id, r.affiliate_id, r.referrer_id, r.referred_id, r.status,
			r.reward_amount, r.completed_at, r.expires_at, r.created_at,
			u.username AS referred_username
		FROM referrals r
		JOIN users u ON u.id = r.referred_id
		WHERE r.affiliate_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2`

	referrals := []Referral{}
	err := r.db.SelectContext(ctx, &referrals, query, affiliateID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent referrals: %w", err)
	}

	return referrals, nil
}

func (r *repository) CountReferralsByStatus(
	ctx context.Context,
	affiliateID string,
) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM referrals
		WHERE affiliate_id = $1
		GROUP BY status`

	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, affiliateID); err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}

	counts := map[string]int{
		ReferralPending:   0,
		ReferralCompleted: 0,
		ReferralExpired:   0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// ExpireOverdueReferrals sweeps this affiliate's pending referrals past
// their window, so dashboard stats never count stale pendings.
func (r *repository) ExpireOverdueReferrals(
	ctx context.Context,
	affiliateID string,
	now time.Time,
) (int64, error) {
	query := `
		UPDATE referrals
		SET status = $1
		WHERE affiliate_id = $2 AND status = $3 AND expires_at < $4`

	result, err := r.db.ExecContext(
		ctx, query, ReferralExpired, affiliateID, ReferralPending, now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire referrals: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire referrals: %w", err)
	}

	return rows, nil
}

func (r *repository) CreditUser(
	ctx context.Context,
	userID string,
	amount float64,
) error {
	query := `
		UPDATE users
		SET credits = credits + $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("credit user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("credit user: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
