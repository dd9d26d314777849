package drinks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saferound/saferound/internal/platform/db"
)

// AppendStatus describes the outcome of an atomic append attempt.
type AppendStatus int

const (
	// AppendInserted means the record was written; the drink is approved.
	AppendInserted AppendStatus = iota
	// AppendCooldown means a prior record inside the window rejected the append.
	AppendCooldown
	// AppendReplayed means the drink ID was already recorded; the original
	// approval stands and no second record is written.
	AppendReplayed
)

// AppendOutcome carries the append status and, when known, the most recent
// prior drink timestamp.
type AppendOutcome struct {
	Status      AppendStatus
	LastDrinkAt *time.Time
}

// Repository defines the storage operations the engine consumes. The
// check-then-append sequence must be serialized per user by the
// implementation: a plain read-then-write is a race condition.
type Repository interface {
	FindLastDrink(ctx context.Context, userID string) (*Record, error)
	AppendDrinkAtomic(ctx context.Context, rec Record, minInterval time.Duration) (AppendOutcome, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// FindLastDrink returns the maximum-timestamp record for the user, or nil.
func (r *repository) FindLastDrink(ctx context.Context, userID string) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT drink_id, user_id, alcohol_grams, ts
		FROM drink_records WHERE user_id = $1
		ORDER BY ts DESC LIMIT 1`, userID)
	var rec Record
	err := row.Scan(&rec.DrinkID, &rec.UserID, &rec.AlcoholGrams, &rec.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AppendDrinkAtomic serializes the cooldown check and the insert behind a row
// lock on the user, so two concurrent attempts for the same user cannot both
// pass the check against a stale last-drink read. The lock is released when
// the transaction ends, on every exit path.
func (r *repository) AppendDrinkAtomic(ctx context.Context, rec Record, minInterval time.Duration) (AppendOutcome, error) {
	var out AppendOutcome
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM users WHERE user_id = $1 FOR UPDATE`, rec.UserID); err != nil {
			return err
		}

		// Replay check comes before the cooldown check: a retried drink ID
		// must echo the original approval even inside the window.
		var seen bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM drink_records WHERE drink_id = $1)`, rec.DrinkID,
		).Scan(&seen); err != nil {
			return err
		}
		if seen {
			out.Status = AppendReplayed
			return nil
		}

		var lastAt time.Time
		err := tx.QueryRow(ctx, `
			SELECT ts FROM drink_records WHERE user_id = $1
			ORDER BY ts DESC LIMIT 1`, rec.UserID).Scan(&lastAt)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil {
			last := lastAt
			out.LastDrinkAt = &last
			if cd := CheckCooldown(&last, rec.Timestamp, minInterval); cd.Blocked {
				out.Status = AppendCooldown
				return nil
			}
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO drink_records (drink_id, user_id, alcohol_grams, ts)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (drink_id) DO NOTHING`,
			rec.DrinkID, rec.UserID, rec.AlcoholGrams, rec.Timestamp)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			out.Status = AppendReplayed
			return nil
		}
		out.Status = AppendInserted
		return nil
	})
	if err != nil {
		return AppendOutcome{}, err
	}
	return out, nil
}

// ListByUser returns the full drink history, oldest first.
func (r *repository) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT drink_id, user_id, alcohol_grams, ts
		FROM drink_records WHERE user_id = $1
		ORDER BY ts ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.DrinkID, &rec.UserID, &rec.AlcoholGrams, &rec.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
