package tip

import "errors"

// Sentinel errors for the tipping protocol client.
// Callers match these with errors.Is; lower layers wrap them with
// fmt.Errorf("%w: ...") to add context.
var (
	// ErrInvalidAmount indicates a tip amount that is zero, negative, or
	// not a finite number. Caught before any network interaction.
	ErrInvalidAmount = errors.New("invalid tip amount")

	// ErrInvalidRequest indicates a malformed tip request, e.g. an empty
	// or oversized message. Caught before any network interaction.
	ErrInvalidRequest = errors.New("invalid tip request")

	// ErrWalletUnavailable indicates the wallet capability is absent or
	// not connected.
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrWalletRejected indicates the wallet declined to sign or send the
	// transaction (user rejection or wallet-side failure).
	ErrWalletRejected = errors.New("wallet rejected transaction")

	// ErrDerivationExhausted indicates no valid bump seed was found when
	// deriving the tip record address. Extremely rare, still handled.
	ErrDerivationExhausted = errors.New("tip record address derivation exhausted")

	// ErrSubmissionFailed indicates the network rejected the transaction:
	// insufficient funds, malformed instruction, or a tip record address
	// that already exists (same tipper, same second).
	ErrSubmissionFailed = errors.New("tip submission failed")

	// ErrConfirmationTimeout indicates the transaction was submitted but
	// finality was not observed within the configured bound.
	ErrConfirmationTimeout = errors.New("confirmation timed out")

	// ErrDecode indicates an on-chain record whose stored shape does not
	// match the expected tip record layout.
	ErrDecode = errors.New("tip record decode failed")

	// ErrSubmitInFlight indicates a submission was attempted while a
	// previous one had not yet settled.
	ErrSubmitInFlight = errors.New("submission already in flight")
)
