package solana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brojonat/tipjar/service/tip"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSender implements TransactionSender for testing.
type mockSender struct {
	sig    solana.Signature
	err    error
	lastTx *solana.Transaction
	calls  int
}

func (m *mockSender) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	m.calls++
	m.lastTx = tx
	if m.err != nil {
		return solana.Signature{}, m.err
	}
	return m.sig, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildTestTransaction assembles an unsigned tip transaction paid by the
// given tipper.
func buildTestTransaction(t *testing.T, tipper solana.PublicKey) *solana.Transaction {
	t.Helper()

	req := tip.Request{
		Tipper:    tipper,
		AmountSOL: 0.5,
		Message:   "Great work!",
		Timestamp: 1700000000,
	}
	recordAddr, _, err := tip.DeriveTipRecordAddress(testProgramID, tipper, req.Timestamp)
	require.NoError(t, err)

	recipient := solana.NewWallet().PublicKey()
	ix, err := tip.BuildTipInstruction(req, recordAddr, testProgramID, recipient)
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{42},
		solana.TransactionPayer(tipper),
	)
	require.NoError(t, err)
	return tx
}

func TestKeypairWallet_Connect(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	wallet := NewKeypairWallet(key, &mockSender{}, discardLogger())

	pub, err := wallet.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), pub)
}

func TestKeypairWallet_SignAndSend(t *testing.T) {
	ctx := context.Background()

	key := solana.NewWallet().PrivateKey
	wantSig := solana.Signature{5}
	sender := &mockSender{sig: wantSig}
	wallet := NewKeypairWallet(key, sender, discardLogger())

	tx := buildTestTransaction(t, key.PublicKey())

	sig, err := wallet.SignAndSend(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, wantSig, sig)
	assert.Equal(t, 1, sender.calls)

	// The sender received the transaction already signed by the tipper.
	require.NotNil(t, sender.lastTx)
	require.Len(t, sender.lastTx.Signatures, 1)
	assert.False(t, sender.lastTx.Signatures[0].IsZero())
	require.NoError(t, sender.lastTx.VerifySignatures())
}

func TestKeypairWallet_SignAndSend_MissingSigner(t *testing.T) {
	ctx := context.Background()

	key := solana.NewWallet().PrivateKey
	sender := &mockSender{}
	wallet := NewKeypairWallet(key, sender, discardLogger())

	// Transaction paid by a key this wallet does not hold.
	tx := buildTestTransaction(t, solana.NewWallet().PublicKey())

	_, err := wallet.SignAndSend(ctx, tx)
	require.ErrorIs(t, err, tip.ErrWalletRejected)
	assert.Zero(t, sender.calls)
}

func TestKeypairWallet_SignAndSend_SendFailure(t *testing.T) {
	ctx := context.Background()

	key := solana.NewWallet().PrivateKey
	sender := &mockSender{err: errors.New("rpc unavailable")}
	wallet := NewKeypairWallet(key, sender, discardLogger())

	tx := buildTestTransaction(t, key.PublicKey())

	_, err := wallet.SignAndSend(ctx, tx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, tip.ErrWalletRejected)
}

func TestNewKeypairWalletFromFile(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	// solana-keygen format: a JSON array of the 64 key bytes.
	parts := make([]string, len(key))
	for i, b := range key {
		parts[i] = fmt.Sprintf("%d", b)
	}
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, []byte("["+strings.Join(parts, ",")+"]"), 0o600))

	wallet, err := NewKeypairWalletFromFile(path, &mockSender{}, discardLogger())
	require.NoError(t, err)

	pub, err := wallet.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), pub)
}

func TestNewKeypairWalletFromFile_Missing(t *testing.T) {
	_, err := NewKeypairWalletFromFile("/nonexistent/id.json", &mockSender{}, discardLogger())
	require.ErrorIs(t, err, tip.ErrWalletUnavailable)
}
