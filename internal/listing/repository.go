// AngelaMos | 2026
// repository.go

package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

const listingColumns = `
	l.id, l.user_id, l.title, l.description, l.price, l.currency,
	l.category, l.subcategory, l.condition, l.images, l.status,
	l.is_premium, l.premium_features, l.location, l.contact_preferences,
	l.views, l.favorites, l.created_at, l.updated_at, l.expires_at,
	l.metadata`

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	ViewAndGet(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, params ListParams) ([]Listing, int, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) error
	CountActiveByUser(
		ctx context.Context,
		userID string,
		now time.Time,
	) (int, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Listing) error {
	query := `
		INSERT INTO listings (
			id, user_id, title, description, price, currency,
			category, subcategory, condition, images, status,
			is_premium, premium_features, location, contact_preferences,
			expires_at, metadata
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17
		)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, l, query,
		l.ID,
		l.UserID,
		l.Title,
		l.Description,
		l.Price,
		l.Currency,
		l.Category,
		l.Subcategory,
		l.Condition,
		l.Images,
		l.Status,
		l.IsPremium,
		l.PremiumFeatures,
		l.Location,
		l.ContactPreferences,
		l.ExpiresAt,
		l.Metadata,
	)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s, u.username AS owner_username
		FROM listings l
		JOIN users u ON u.id = l.user_id
		WHERE l.id = $1`,
		listingColumns,
	)

	var l Listing
	err := r.db.GetContext(ctx, &l, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	return &l, nil
}

// ViewAndGet increments the view counter and returns the updated row in a
// single statement, so concurrent reads never lose a count.
func (r *repository) ViewAndGet(
	ctx context.Context,
	id string,
) (*Listing, error) {
	query := fmt.Sprintf(`
		WITH viewed AS (
			UPDATE listings
			SET views = views + 1
			WHERE id = $1
			RETURNING *
		)
		SELECT %s, u.username AS owner_username
		FROM viewed l
		JOIN users u ON u.id = l.user_id`,
		listingColumns,
	)

	var l Listing
	err := r.db.GetContext(ctx, &l, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("view listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("view listing: %w", err)
	}

	return &l, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Listing, int, error) {
	where := []string{}
	args := []any{}

	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if params.Category != "" {
		args = append(args, params.Category)
		where = append(where, fmt.Sprintf("l.category = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf(
		`SELECT COUNT(*) FROM listings l %s`,
		clause,
	)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	args = append(args, params.Limit, offset)

	query := fmt.Sprintf(`
		SELECT %s, u.username AS owner_username
		FROM listings l
		JOIN users u ON u.id = l.user_id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		listingColumns,
		clause,
		orderBy(params.Sort),
		len(args)-1,
		len(args),
	)

	listings := []Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}

	return listings, total, nil
}

// orderBy maps the request sort key to a fixed ORDER BY clause. Keys are
// validated in ListParams.Normalize; anything else gets the default of
// premium placement first, newest second.
func orderBy(sort string) string {
	switch sort {
	case "price_asc":
		return "l.price ASC, l.created_at DESC"
	case "price_desc":
		return "l.price DESC, l.created_at DESC"
	case "newest":
		return "l.created_at DESC"
	case "oldest":
		return "l.created_at ASC"
	default:
		return "l.is_premium DESC, l.created_at DESC"
	}
}

func (r *repository) Update(ctx context.Context, l *Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, price = $4, category = $5,
		    subcategory = $6, condition = $7, images = $8, status = $9,
		    premium_features = $10, location = $11,
		    contact_preferences = $12, metadata = $13, expires_at = $14,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &l.UpdatedAt, query,
		l.ID,
		l.Title,
		l.Description,
		l.Price,
		l.Category,
		l.Subcategory,
		l.Condition,
		l.Images,
		l.Status,
		l.PremiumFeatures,
		l.Location,
		l.ContactPreferences,
		l.Metadata,
		l.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM listings WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete listing: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE listings
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set listing status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set listing status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set listing status: %w", core.ErrNotFound)
	}

	return nil
}

// CountActiveByUser counts listings still inside their window. Rows with
// a stale active status past expires_at do not hold a quota slot.
func (r *repository) CountActiveByUser(
	ctx context.Context,
	userID string,
	now time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM listings
		WHERE user_id = $1 AND status = $2 AND expires_at > $3`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, StatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("count active listings: %w", err)
	}

	return count, nil
}

// ExpireOverdue sweeps active listings past their deadline in bulk. Called
// before list reads so pages never show stale active rows.
func (r *repository) ExpireOverdue(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	query := `
		UPDATE listings
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at < $3`

	result, err := r.db.ExecContext(ctx, query, StatusExpired, StatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("expire listings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire listings: %w", err)
	}

	return rows, nil
}
