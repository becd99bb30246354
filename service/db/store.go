package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested tip does not exist.
var ErrNotFound = errors.New("tip not found")

// Store provides database operations for the indexed tip cache.
// The chain remains the source of truth; this cache lets the HTTP API serve
// the feed without hammering the RPC endpoint on every request.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store with the given database connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Tip is an indexed on-chain tip record.
type Tip struct {
	RecordAddress    string    // PDA of the tip record account (primary key)
	TipperAddress    string
	AmountLamports   int64
	Message          string
	TimestampSeconds int64
	Network          string // "mainnet" or "devnet"
	CreatedAt        time.Time
}

// UpsertTipParams contains the parameters for indexing a tip.
type UpsertTipParams struct {
	RecordAddress    string
	TipperAddress    string
	AmountLamports   int64
	Message          string
	TimestampSeconds int64
	Network          string
}

// UpsertTip inserts a tip record, or leaves the existing row untouched if
// the record address is already indexed. On-chain records are immutable, so
// a conflict never needs an update. Returns true if a new row was written.
func (s *Store) UpsertTip(ctx context.Context, params UpsertTipParams) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO tips (record_address, tipper_address, amount_lamports, message, timestamp_seconds, network)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (record_address) DO NOTHING`,
		params.RecordAddress,
		params.TipperAddress,
		params.AmountLamports,
		params.Message,
		params.TimestampSeconds,
		params.Network,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert tip: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetTip retrieves a tip by its record address.
func (s *Store) GetTip(ctx context.Context, recordAddress string) (*Tip, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT record_address, tipper_address, amount_lamports, message, timestamp_seconds, network, created_at
		FROM tips
		WHERE record_address = $1`,
		recordAddress,
	)

	var t Tip
	err := row.Scan(&t.RecordAddress, &t.TipperAddress, &t.AmountLamports, &t.Message, &t.TimestampSeconds, &t.Network, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, recordAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tip: %w", err)
	}
	return &t, nil
}

// ListTipsParams contains pagination parameters for listing tips.
type ListTipsParams struct {
	Network string
	Limit   int32
	Offset  int32
}

// ListTips retrieves indexed tips most recent first. Ties on the on-chain
// timestamp fall back to the record address for a deterministic order.
func (s *Store) ListTips(ctx context.Context, params ListTipsParams) ([]*Tip, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT record_address, tipper_address, amount_lamports, message, timestamp_seconds, network, created_at
		FROM tips
		WHERE network = $1
		ORDER BY timestamp_seconds DESC, record_address
		LIMIT $2 OFFSET $3`,
		params.Network,
		params.Limit,
		params.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	defer rows.Close()

	var tips []*Tip
	for rows.Next() {
		var t Tip
		if err := rows.Scan(&t.RecordAddress, &t.TipperAddress, &t.AmountLamports, &t.Message, &t.TimestampSeconds, &t.Network, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tip: %w", err)
		}
		tips = append(tips, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tips: %w", err)
	}
	return tips, nil
}

// CountTips returns the number of indexed tips for a network.
func (s *Store) CountTips(ctx context.Context, network string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tips WHERE network = $1`, network).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tips: %w", err)
	}
	return count, nil
}
