package temporal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/brojonat/tipjar/service/db"
	natspkg "github.com/brojonat/tipjar/service/nats"
	"github.com/brojonat/tipjar/service/tip"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore implements StoreInterface for testing.
type mockStore struct {
	inserted map[string]bool // record address -> was it new
	err      error
	upserts  []db.UpsertTipParams
}

func (m *mockStore) UpsertTip(ctx context.Context, params db.UpsertTipParams) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.upserts = append(m.upserts, params)
	return m.inserted[params.RecordAddress], nil
}

// mockChain implements ChainInterface for testing.
type mockChain struct {
	accounts []tip.RawAccount
	err      error
}

func (m *mockChain) TipRecordAccounts(ctx context.Context) ([]tip.RawAccount, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.accounts, nil
}

func newTestActivities(store *mockStore, chain *mockChain, publisher PublisherInterface) *Activities {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewActivities(store, chain, publisher, nil, logger)
}

func encodedAccount(t *testing.T, tipper solana.PublicKey, message string, timestamp int64) tip.RawAccount {
	t.Helper()
	data, err := tip.EncodeRecord(&tip.Record{
		Tipper:    tipper,
		Amount:    500_000_000,
		Message:   message,
		Timestamp: timestamp,
	})
	require.NoError(t, err)
	return tip.RawAccount{Pubkey: solana.NewWallet().PublicKey(), Data: data}
}

func TestLoadTipRecords(t *testing.T) {
	ctx := context.Background()
	tipper := solana.NewWallet().PublicKey()

	chain := &mockChain{
		accounts: []tip.RawAccount{
			encodedAccount(t, tipper, "hello", 1700000000),
			{Pubkey: solana.NewWallet().PublicKey(), Data: []byte{0xde, 0xad}},
			encodedAccount(t, tipper, "world", 1700000100),
		},
	}
	activities := newTestActivities(&mockStore{}, chain, natspkg.NewMockPublisher())

	result, err := activities.LoadTipRecords(ctx, LoadTipRecordsInput{Network: "devnet"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Tips, 2)
	assert.Equal(t, tipper.String(), result.Tips[0].TipperAddress)
	assert.Equal(t, int64(500_000_000), result.Tips[0].AmountLamports)
	assert.Equal(t, "hello", result.Tips[0].Message)
}

func TestLoadTipRecords_ChainError(t *testing.T) {
	ctx := context.Background()

	chain := &mockChain{err: errors.New("rpc unavailable")}
	activities := newTestActivities(&mockStore{}, chain, natspkg.NewMockPublisher())

	_, err := activities.LoadTipRecords(ctx, LoadTipRecordsInput{Network: "devnet"})
	require.Error(t, err)
}

func TestWriteTips(t *testing.T) {
	ctx := context.Background()

	store := &mockStore{inserted: map[string]bool{"rec-new": true}}
	activities := newTestActivities(store, &mockChain{}, natspkg.NewMockPublisher())

	tips := []IndexedTip{
		{RecordAddress: "rec-new", TipperAddress: "tipper1", AmountLamports: 100, Message: "a", TimestampSeconds: 1},
		{RecordAddress: "rec-seen", TipperAddress: "tipper2", AmountLamports: 200, Message: "b", TimestampSeconds: 2},
	}

	result, err := activities.WriteTips(ctx, WriteTipsInput{Network: "devnet", Tips: tips})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)
	require.Len(t, result.New, 1)
	assert.Equal(t, "rec-new", result.New[0].RecordAddress)

	// Both tips were upserted under the sync's network.
	require.Len(t, store.upserts, 2)
	assert.Equal(t, "devnet", store.upserts[0].Network)
}

func TestWriteTips_StoreError(t *testing.T) {
	ctx := context.Background()

	store := &mockStore{err: errors.New("connection refused")}
	activities := newTestActivities(store, &mockChain{}, natspkg.NewMockPublisher())

	_, err := activities.WriteTips(ctx, WriteTipsInput{
		Network: "devnet",
		Tips:    []IndexedTip{{RecordAddress: "rec-1"}},
	})
	require.Error(t, err)
}

func TestPublishTips(t *testing.T) {
	ctx := context.Background()

	publisher := natspkg.NewMockPublisher()
	activities := newTestActivities(&mockStore{}, &mockChain{}, publisher)

	result, err := activities.PublishTips(ctx, PublishTipsInput{
		Network: "devnet",
		Tips: []IndexedTip{
			{RecordAddress: "rec-1", TipperAddress: "tipper1", AmountLamports: 100, Message: "a", TimestampSeconds: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Published)

	events := publisher.GetPublishedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "rec-1", events[0].RecordAddress)
	assert.Equal(t, "tipper1", events[0].TipperAddress)
	assert.Equal(t, "devnet", events[0].Network)
	assert.False(t, events[0].PublishedAt.IsZero())
}

func TestPublishTips_Empty(t *testing.T) {
	ctx := context.Background()

	publisher := natspkg.NewMockPublisher()
	activities := newTestActivities(&mockStore{}, &mockChain{}, publisher)

	result, err := activities.PublishTips(ctx, PublishTipsInput{Network: "devnet"})
	require.NoError(t, err)
	assert.Zero(t, result.Published)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestPublishTips_PublisherError(t *testing.T) {
	ctx := context.Background()

	publisher := natspkg.NewMockPublisher()
	publisher.SetPublishError(errors.New("nats unavailable"))
	activities := newTestActivities(&mockStore{}, &mockChain{}, publisher)

	_, err := activities.PublishTips(ctx, PublishTipsInput{
		Network: "devnet",
		Tips:    []IndexedTip{{RecordAddress: "rec-1"}},
	})
	require.Error(t, err)
}
