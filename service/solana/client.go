package solana

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/tipjar/service/metrics"
	"github.com/brojonat/tipjar/service/tip"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetLatestBlockhash(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (*rpc.GetLatestBlockhashResult, error)

	SendTransactionWithOpts(
		ctx context.Context,
		tx *solana.Transaction,
		opts rpc.TransactionOpts,
	) (solana.Signature, error)

	GetSignatureStatuses(
		ctx context.Context,
		searchTransactionHistory bool,
		sigs ...solana.Signature,
	) (*rpc.GetSignatureStatusesResult, error)

	GetProgramAccountsWithOpts(
		ctx context.Context,
		program solana.PublicKey,
		opts *rpc.GetProgramAccountsOpts,
	) (rpc.GetProgramAccountsResult, error)
}

// confirmPollInterval is how often Confirm polls for signature status.
// Public RPC endpoints tolerate ~1 RPS; premium endpoints could go lower.
const confirmPollInterval = time.Second

// Client wraps the RPC client with the ledger operations the tipping
// protocol needs: blockhash fetch, transaction submission, confirmation
// polling, and tip record account queries. It implements tip.Network and
// tip.AccountSource.
type Client struct {
	rpc       RPCClient
	programID solana.PublicKey
	endpoint  string // RPC endpoint identifier for metrics (e.g., "mainnet", "devnet", rpc host)
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewClient creates a new Solana client for the given tipping program.
// The endpoint parameter is used for metrics labeling (e.g., "mainnet",
// "devnet", or RPC hostname). If m is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, programID solana.PublicKey, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:       rpcClient,
		programID: programID,
		endpoint:  endpoint,
		metrics:   m,
		logger:    logger,
	}
}

// LatestBlockhash returns a recent blockhash at finalized commitment.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	c.recordRPC("GetLatestBlockhash", err, start)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

// SendTransaction broadcasts a fully signed transaction.
// Preflight stays enabled so deterministic failures (e.g. a tip record
// address that already exists) surface immediately instead of after the
// confirmation wait.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	start := time.Now()
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	c.recordRPC("SendTransaction", err, start)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// Confirm blocks until the given signature is finalized, polling signature
// status at a fixed interval. It returns ctx.Err() when the context expires
// and a descriptive error if the cluster reports the transaction failed.
func (c *Client) Confirm(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		start := time.Now()
		out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		c.recordRPC("GetSignatureStatuses", err, start)
		if err != nil {
			// Poll errors are transient; keep polling until ctx expires.
			c.logger.WarnContext(ctx, "signature status poll failed",
				"signature", sig.String(),
				"error", err,
			)
		} else if len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain: %v", sig, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				c.logger.DebugContext(ctx, "transaction finalized",
					"signature", sig.String(),
					"slot", status.Slot,
				)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TipRecordAccounts queries every program-owned account carrying the tip
// record discriminator and returns the raw account data for decoding.
func (c *Client) TipRecordAccounts(ctx context.Context) ([]tip.RawAccount, error) {
	opts := &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentFinalized,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  solana.Base58(tip.RecordDiscriminator()),
				},
			},
		},
	}

	start := time.Now()
	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.programID, opts)
	c.recordRPC("GetProgramAccounts", err, start)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	accounts := make([]tip.RawAccount, 0, len(out))
	for _, keyed := range out {
		if keyed == nil || keyed.Account == nil || keyed.Account.Data == nil {
			continue
		}
		accounts = append(accounts, tip.RawAccount{
			Pubkey: keyed.Pubkey,
			Data:   keyed.Account.Data.GetBinary(),
		})
	}

	c.logger.DebugContext(ctx, "fetched tip record accounts",
		"program", c.programID.String(),
		"count", len(accounts),
	)
	return accounts, nil
}

func (c *Client) recordRPC(method string, err error, start time.Time) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall(method, status, c.endpoint, time.Since(start).Seconds())
}
