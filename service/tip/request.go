package tip

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
)

// MaxMessageLength is the protocol's ceiling on tip message length.
const MaxMessageLength = 200

// AmountPresets are the convenience SOL amounts surfaced to users.
// They are not protocol-enforced limits.
var AmountPresets = []float64{0.1, 0.5, 1.0, 2.0}

// Request describes a tip to be submitted: who is tipping, how much (in
// SOL), the message to attach, and the second-granularity timestamp that
// keys the derived record address.
type Request struct {
	Tipper    solana.PublicKey
	AmountSOL float64
	Message   string
	Timestamp int64 // unix seconds
}

// Validate checks the request invariants. It returns ErrInvalidAmount for a
// zero, negative, or non-finite amount, and ErrInvalidRequest for a message
// that is empty after trimming or longer than MaxMessageLength characters.
func (r Request) Validate() error {
	if math.IsNaN(r.AmountSOL) || math.IsInf(r.AmountSOL, 0) {
		return fmt.Errorf("%w: amount must be finite", ErrInvalidAmount)
	}
	if r.AmountSOL <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidAmount, r.AmountSOL)
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("%w: message must not be empty", ErrInvalidRequest)
	}
	if n := utf8.RuneCountInString(r.Message); n > MaxMessageLength {
		return fmt.Errorf("%w: message is %d characters, limit is %d", ErrInvalidRequest, n, MaxMessageLength)
	}
	return nil
}

// DisplayTip is the ephemeral, human-facing view of an on-chain tip record.
// It is recomputed on every history load and never persisted as-is.
type DisplayTip struct {
	TipperShort     string  `json:"tipper"`
	AmountSOL       float64 `json:"amount_sol"`
	Message         string  `json:"message"`
	TimestampMillis int64   `json:"timestamp_ms"`
}

// ShortenAddress renders a public key as its first four and last four
// base58 characters, e.g. "Addr...AAAA".
func ShortenAddress(pk solana.PublicKey) string {
	s := pk.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}
