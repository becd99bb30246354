package tip

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Phase is the connection/submission phase of a tipping session.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseConnectedIdle
	PhaseConnectedSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnectedIdle:
		return "connected"
	case PhaseConnectedSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Session is an immutable snapshot of tipping session state: connection
// phase, the active wallet, and the current feed. Transitions return a new
// snapshot; the zero value is a fresh disconnected session.
//
// The feed is rewritten wholesale on every reload rather than patched
// incrementally, so a failed reload leaves the previous feed intact.
type Session struct {
	Phase       Phase
	Wallet      solana.PublicKey
	WalletShort string
	Feed        []DisplayTip
}

// NewSession returns the initial disconnected session.
func NewSession() Session {
	return Session{Phase: PhaseDisconnected}
}

// Connected reports whether a wallet is connected (idle or submitting).
func (s Session) Connected() bool {
	return s.Phase == PhaseConnectedIdle || s.Phase == PhaseConnectedSubmitting
}

// Pending reports whether a submission is in flight.
func (s Session) Pending() bool {
	return s.Phase == PhaseConnectedSubmitting
}

// BeginConnect transitions to the connecting phase.
func (s Session) BeginConnect() Session {
	s.Phase = PhaseConnecting
	return s
}

// ConnectSucceeded records the connected wallet and enters the idle phase.
func (s Session) ConnectSucceeded(wallet solana.PublicKey) Session {
	s.Phase = PhaseConnectedIdle
	s.Wallet = wallet
	s.WalletShort = ShortenAddress(wallet)
	return s
}

// ConnectFailed returns to the disconnected phase.
func (s Session) ConnectFailed() Session {
	return NewSession()
}

// BeginSubmit enters the submitting phase. It fails with ErrSubmitInFlight
// if a submission is already pending (the double-click guard) and with
// ErrWalletUnavailable if no wallet is connected.
func (s Session) BeginSubmit() (Session, error) {
	switch s.Phase {
	case PhaseConnectedSubmitting:
		return s, ErrSubmitInFlight
	case PhaseConnectedIdle:
		s.Phase = PhaseConnectedSubmitting
		return s, nil
	default:
		return s, fmt.Errorf("%w: session is %s", ErrWalletUnavailable, s.Phase)
	}
}

// SettleSubmit returns to the idle phase after a submission completes,
// successfully or not. The session stays retryable either way.
func (s Session) SettleSubmit() Session {
	if s.Phase == PhaseConnectedSubmitting {
		s.Phase = PhaseConnectedIdle
	}
	return s
}

// WithFeed replaces the feed wholesale with the given tips.
func (s Session) WithFeed(feed []DisplayTip) Session {
	s.Feed = make([]DisplayTip, len(feed))
	copy(s.Feed, feed)
	return s
}

// Reset tears the session down to its initial disconnected state.
func (s Session) Reset() Session {
	return NewSession()
}
