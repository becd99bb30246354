package tip

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/brojonat/tipjar/service/metrics"
	"github.com/gagliardetto/solana-go"
)

// RawAccount is an undecoded program-owned account: its address and data.
type RawAccount struct {
	Pubkey solana.PublicKey
	Data   []byte
}

// AccountSource queries the ledger for all accounts of the tip record type.
type AccountSource interface {
	TipRecordAccounts(ctx context.Context) ([]RawAccount, error)
}

// Aggregator rebuilds the tip feed from on-chain records.
type Aggregator struct {
	source  AccountSource
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAggregator creates a history aggregator. If m is nil, no metrics are
// recorded.
func NewAggregator(source AccountSource, m *metrics.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{source: source, metrics: m, logger: logger}
}

// LoadAll queries every tip record account, decodes each into a DisplayTip,
// and returns the feed sorted by timestamp descending (most recent first).
// Ties keep discovery order (stable sort); sub-second ordering is not
// tracked on-chain.
//
// Malformed records are skipped rather than aborting the load; the second
// return value is the count of skipped records. Zero records is an empty
// feed, not an error.
func (a *Aggregator) LoadAll(ctx context.Context) ([]DisplayTip, int, error) {
	start := time.Now()

	accounts, err := a.source.TipRecordAccounts(ctx)
	if err != nil {
		a.record("error", start, 0)
		return nil, 0, fmt.Errorf("failed to query tip record accounts: %w", err)
	}

	tips := make([]DisplayTip, 0, len(accounts))
	skipped := 0
	for _, acct := range accounts {
		rec, err := DecodeRecord(acct.Data)
		if err != nil {
			skipped++
			a.logger.WarnContext(ctx, "skipping malformed tip record",
				"account", acct.Pubkey.String(),
				"error", err,
			)
			continue
		}
		tips = append(tips, rec.Display())
	}

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].TimestampMillis > tips[j].TimestampMillis
	})

	a.logger.InfoContext(ctx, "loaded tip history",
		"count", len(tips),
		"skipped", skipped,
	)
	a.record("success", start, skipped)
	return tips, skipped, nil
}

func (a *Aggregator) record(status string, start time.Time, skipped int) {
	if a.metrics != nil {
		a.metrics.RecordHistoryLoad(status, time.Since(start).Seconds(), skipped)
	}
}
