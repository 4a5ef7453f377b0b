// AngelaMos | 2026
// repository.go

package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uknown-one/stellarAds/internal/core"
)

const transactionColumns = `
	id, buyer_id, seller_id, listing_id, type, amount, currency, status,
	payment_method, payment_id, completed_at, refunded_at, metadata,
	created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	ListByUser(
		ctx context.Context,
		userID string,
		page, limit int,
	) ([]Transaction, int, error)
	UpdateStatus(ctx context.Context, t *Transaction) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions (
			id, buyer_id, seller_id, listing_id, type, amount, currency,
			status, payment_method, payment_id, completed_at, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, t, query,
		t.ID,
		t.BuyerID,
		t.SellerID,
		t.ListingID,
		t.Type,
		t.Amount,
		t.Currency,
		t.Status,
		t.PaymentMethod,
		t.PaymentID,
		t.CompletedAt,
		t.Metadata,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Transaction, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM transactions WHERE id = $1`,
		transactionColumns,
	)

	var t Transaction
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get transaction: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return &t, nil
}

// ListByUser returns transactions the user participated in from either
// side, newest first.
func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	page, limit int,
) ([]Transaction, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM transactions
		 WHERE buyer_id = $1 OR seller_id = $1`,
		userID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		transactionColumns,
	)

	transactions := []Transaction{}
	offset := (page - 1) * limit
	err = r.db.SelectContext(ctx, &transactions, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, t *Transaction) error {
	query := `
		UPDATE transactions
		SET status = $2, completed_at = $3, refunded_at = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &t.UpdatedAt, query,
		t.ID,
		t.Status,
		t.CompletedAt,
		t.RefundedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update transaction: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	return nil
}
