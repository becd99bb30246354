package temporal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/tipjar/service/db"
	"github.com/brojonat/tipjar/service/metrics"
	natspkg "github.com/brojonat/tipjar/service/nats"
	"github.com/brojonat/tipjar/service/tip"
)

// IndexedTip is the serializable form of a decoded on-chain tip record
// passed between activities.
type IndexedTip struct {
	RecordAddress    string `json:"record_address"`
	TipperAddress    string `json:"tipper_address"`
	AmountLamports   int64  `json:"amount_lamports"`
	Message          string `json:"message"`
	TimestampSeconds int64  `json:"timestamp_seconds"`
}

// SyncTipsInput contains the input parameters for a chain-to-database sync.
type SyncTipsInput struct {
	Network string `json:"network"` // "mainnet" or "devnet"
}

// SyncTipsResult contains the result of a sync run.
type SyncTipsResult struct {
	Network   string    `json:"network"`
	Loaded    int       `json:"loaded"`
	Skipped   int       `json:"skipped"` // malformed on-chain records
	Written   int       `json:"written"` // newly indexed tips
	Published int       `json:"published"`
	SyncTime  time.Time `json:"sync_time"`
	Error     *string   `json:"error,omitempty"`
}

// LoadTipRecordsInput contains parameters for the LoadTipRecords activity.
type LoadTipRecordsInput struct {
	Network string `json:"network"`
}

// LoadTipRecordsResult contains the decoded on-chain tip records.
type LoadTipRecordsResult struct {
	Tips    []IndexedTip `json:"tips"`
	Skipped int          `json:"skipped"`
}

// WriteTipsInput contains parameters for the WriteTips activity.
type WriteTipsInput struct {
	Network string       `json:"network"`
	Tips    []IndexedTip `json:"tips"`
}

// WriteTipsResult contains the result of writing tips to the store.
type WriteTipsResult struct {
	Written int          `json:"written"`
	New     []IndexedTip `json:"new"` // tips that were not previously indexed
}

// PublishTipsInput contains parameters for the PublishTips activity.
type PublishTipsInput struct {
	Network string       `json:"network"`
	Tips    []IndexedTip `json:"tips"`
}

// PublishTipsResult contains the result of publishing tip events.
type PublishTipsResult struct {
	Published int `json:"published"`
}

// StoreInterface defines the database operations needed by activities.
// This allows for easy mocking in tests.
type StoreInterface interface {
	UpsertTip(ctx context.Context, params db.UpsertTipParams) (bool, error)
}

// ChainInterface defines the ledger operations needed by activities.
// This allows for easy mocking in tests.
type ChainInterface interface {
	TipRecordAccounts(ctx context.Context) ([]tip.RawAccount, error)
}

// PublisherInterface defines the NATS publishing operations needed by activities.
type PublisherInterface interface {
	PublishTipBatch(ctx context.Context, events []*natspkg.TipEvent) error
}

// Activities holds the dependencies needed by Temporal activities.
// All dependencies are explicit; if metrics is nil none are recorded.
type Activities struct {
	store     StoreInterface
	chain     ChainInterface
	publisher PublisherInterface
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewActivities creates a new Activities instance with explicit dependencies.
func NewActivities(store StoreInterface, chain ChainInterface, publisher PublisherInterface, m *metrics.Metrics, logger *slog.Logger) *Activities {
	return &Activities{
		store:     store,
		chain:     chain,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// LoadTipRecords queries all on-chain tip record accounts and decodes them.
// Malformed records are skipped and counted, matching the history
// aggregator's policy.
func (a *Activities) LoadTipRecords(ctx context.Context, input LoadTipRecordsInput) (*LoadTipRecordsResult, error) {
	accounts, err := a.chain.TipRecordAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query tip record accounts: %w", err)
	}

	result := &LoadTipRecordsResult{Tips: make([]IndexedTip, 0, len(accounts))}
	for _, acct := range accounts {
		rec, err := tip.DecodeRecord(acct.Data)
		if err != nil {
			result.Skipped++
			a.logger.WarnContext(ctx, "skipping malformed tip record during sync",
				"account", acct.Pubkey.String(),
				"error", err,
			)
			continue
		}
		result.Tips = append(result.Tips, IndexedTip{
			RecordAddress:    acct.Pubkey.String(),
			TipperAddress:    rec.Tipper.String(),
			AmountLamports:   int64(rec.Amount),
			Message:          rec.Message,
			TimestampSeconds: rec.Timestamp,
		})
	}

	a.logger.InfoContext(ctx, "loaded tip records from chain",
		"network", input.Network,
		"count", len(result.Tips),
		"skipped", result.Skipped,
	)
	return result, nil
}

// WriteTips upserts decoded tips into the store. On-chain records are
// immutable, so existing rows are left untouched; the result reports which
// tips were newly indexed.
func (a *Activities) WriteTips(ctx context.Context, input WriteTipsInput) (*WriteTipsResult, error) {
	result := &WriteTipsResult{}
	for _, t := range input.Tips {
		inserted, err := a.store.UpsertTip(ctx, db.UpsertTipParams{
			RecordAddress:    t.RecordAddress,
			TipperAddress:    t.TipperAddress,
			AmountLamports:   t.AmountLamports,
			Message:          t.Message,
			TimestampSeconds: t.TimestampSeconds,
			Network:          input.Network,
		})
		if err != nil {
			a.recordDB("upsert_tip", "error")
			return nil, fmt.Errorf("failed to write tip %s: %w", t.RecordAddress, err)
		}
		a.recordDB("upsert_tip", "success")
		if inserted {
			result.Written++
			result.New = append(result.New, t)
		}
	}

	a.logger.InfoContext(ctx, "wrote tips to store",
		"network", input.Network,
		"written", result.Written,
		"total", len(input.Tips),
	)
	return result, nil
}

// PublishTips publishes newly indexed tips to NATS.
func (a *Activities) PublishTips(ctx context.Context, input PublishTipsInput) (*PublishTipsResult, error) {
	if len(input.Tips) == 0 {
		return &PublishTipsResult{}, nil
	}

	events := make([]*natspkg.TipEvent, 0, len(input.Tips))
	for _, t := range input.Tips {
		events = append(events, natspkg.FromDBTip(&db.Tip{
			RecordAddress:    t.RecordAddress,
			TipperAddress:    t.TipperAddress,
			AmountLamports:   t.AmountLamports,
			Message:          t.Message,
			TimestampSeconds: t.TimestampSeconds,
			Network:          input.Network,
		}))
	}

	if err := a.publisher.PublishTipBatch(ctx, events); err != nil {
		return nil, fmt.Errorf("failed to publish tip events: %w", err)
	}

	a.logger.InfoContext(ctx, "published tip events", "count", len(events))
	return &PublishTipsResult{Published: len(events)}, nil
}

func (a *Activities) recordDB(operation, status string) {
	if a.metrics != nil {
		a.metrics.RecordDBOperation(operation, status)
	}
}
