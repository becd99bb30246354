package tip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/tipjar/service/metrics"
	"github.com/gagliardetto/solana-go"
)

// Wallet is the opaque wallet capability: key custody and signing stay
// behind this interface, the core never sees the underlying provider.
type Wallet interface {
	// Connect returns the wallet's public key. It fails with
	// ErrWalletUnavailable if no wallet is present.
	Connect(ctx context.Context) (solana.PublicKey, error)

	// SignAndSend signs the transaction and broadcasts it. It may block
	// indefinitely awaiting user interaction; cancel via ctx. A declined
	// signature surfaces as ErrWalletRejected.
	SignAndSend(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Network is the opaque ledger capability needed to submit a tip.
type Network interface {
	// LatestBlockhash returns a recent blockhash for transaction assembly.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// Confirm blocks until the transaction is finalized or ctx expires.
	// A transaction the cluster rejected returns a non-nil error.
	Confirm(ctx context.Context, sig solana.Signature) error
}

// Pipeline submits tips: derive the record address, build the instruction,
// hand the transaction to the wallet, and wait for finality.
type Pipeline struct {
	wallet         Wallet
	network        Network
	programID      solana.PublicKey
	recipient      solana.PublicKey
	confirmTimeout time.Duration
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewPipeline creates a submission pipeline. If m is nil, no metrics are
// recorded. confirmTimeout bounds the confirmation wait; zero or negative
// values fall back to 90 seconds.
func NewPipeline(wallet Wallet, network Network, programID, recipient solana.PublicKey, confirmTimeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Pipeline {
	if confirmTimeout <= 0 {
		confirmTimeout = 90 * time.Second
	}
	return &Pipeline{
		wallet:         wallet,
		network:        network,
		programID:      programID,
		recipient:      recipient,
		confirmTimeout: confirmTimeout,
		metrics:        m,
		logger:         logger,
	}
}

// Submit validates the request, derives the tip record address, builds and
// submits the transaction, and blocks until the network confirms it.
//
// There is no automatic retry: resubmitting with the same timestamp derives
// the same record address, which the cluster rejects as already in use.
// That failure is deterministic and surfaces as ErrSubmissionFailed, giving
// natural idempotency keyed on (tipper, second-granularity timestamp).
func (p *Pipeline) Submit(ctx context.Context, req Request) (solana.Signature, error) {
	start := time.Now()

	// Validation errors are reported synchronously, before any wallet or
	// network interaction.
	if err := req.Validate(); err != nil {
		p.record("invalid", start)
		return solana.Signature{}, err
	}

	recordAddr, bump, err := DeriveTipRecordAddress(p.programID, req.Tipper, req.Timestamp)
	if err != nil {
		p.record("invalid", start)
		return solana.Signature{}, err
	}

	p.logger.DebugContext(ctx, "derived tip record address",
		"tipper", req.Tipper.String(),
		"timestamp", req.Timestamp,
		"record", recordAddr.String(),
		"bump", bump,
	)

	ix, err := BuildTipInstruction(req, recordAddr, p.programID, p.recipient)
	if err != nil {
		p.record("invalid", start)
		return solana.Signature{}, err
	}

	blockhash, err := p.network.LatestBlockhash(ctx)
	if err != nil {
		p.record("failed", start)
		return solana.Signature{}, fmt.Errorf("%w: failed to fetch blockhash: %v", ErrSubmissionFailed, err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(req.Tipper),
	)
	if err != nil {
		p.record("failed", start)
		return solana.Signature{}, fmt.Errorf("%w: failed to assemble transaction: %v", ErrSubmissionFailed, err)
	}

	// This step may suspend indefinitely while the user decides.
	sig, err := p.wallet.SignAndSend(ctx, tx)
	if err != nil {
		if errors.Is(err, ErrWalletRejected) || errors.Is(err, ErrWalletUnavailable) {
			p.record("wallet_rejected", start)
			return solana.Signature{}, err
		}
		p.record("failed", start)
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	p.logger.InfoContext(ctx, "tip transaction sent, awaiting confirmation",
		"signature", sig.String(),
		"record", recordAddr.String(),
	)

	confirmCtx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	if err := p.network.Confirm(confirmCtx, sig); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(confirmCtx.Err(), context.DeadlineExceeded) {
			p.record("timeout", start)
			return sig, fmt.Errorf("%w: signature %s not finalized within %s", ErrConfirmationTimeout, sig, p.confirmTimeout)
		}
		p.record("failed", start)
		return sig, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	p.logger.InfoContext(ctx, "tip confirmed",
		"signature", sig.String(),
		"tipper", ShortenAddress(req.Tipper),
		"amount_sol", req.AmountSOL,
	)
	p.record("confirmed", start)
	return sig, nil
}

func (p *Pipeline) record(status string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordTipSubmission(status, time.Since(start).Seconds())
	}
}
