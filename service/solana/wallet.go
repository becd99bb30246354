package solana

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brojonat/tipjar/service/tip"
	"github.com/gagliardetto/solana-go"
)

// TransactionSender broadcasts a signed transaction to the network.
// *Client satisfies this.
type TransactionSender interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// KeypairWallet implements tip.Wallet using a local keypair file (the
// standard solana-keygen JSON format). It is the CLI counterpart of a
// browser wallet: the private key never leaves this type.
type KeypairWallet struct {
	key    solana.PrivateKey
	sender TransactionSender
	logger *slog.Logger
}

// NewKeypairWalletFromFile loads a keypair from a solana-keygen file.
// A missing or unreadable file surfaces as ErrWalletUnavailable.
func NewKeypairWalletFromFile(path string, sender TransactionSender, logger *slog.Logger) (*KeypairWallet, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load keypair from %s: %v", tip.ErrWalletUnavailable, path, err)
	}
	return &KeypairWallet{key: key, sender: sender, logger: logger}, nil
}

// NewKeypairWallet wraps an in-memory private key. Used by tests.
func NewKeypairWallet(key solana.PrivateKey, sender TransactionSender, logger *slog.Logger) *KeypairWallet {
	return &KeypairWallet{key: key, sender: sender, logger: logger}
}

// Connect returns the wallet's public key.
func (w *KeypairWallet) Connect(ctx context.Context) (solana.PublicKey, error) {
	return w.key.PublicKey(), nil
}

// SignAndSend signs the transaction with the wallet key and broadcasts it.
// A signing failure (e.g. the transaction requires a signer this wallet
// does not hold) surfaces as ErrWalletRejected.
func (w *KeypairWallet) SignAndSend(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	pub := w.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", tip.ErrWalletRejected, err)
	}

	sig, err := w.sender.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}

	w.logger.DebugContext(ctx, "transaction signed and sent",
		"signer", pub.String(),
		"signature", sig.String(),
	)
	return sig, nil
}
