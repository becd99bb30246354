package tip

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConnectFlow(t *testing.T) {
	wallet := solana.MustPublicKeyFromBase58("GsJYonU5Kz4MJBHZ5UFx9oyStBpXXswnZcFUorktj2yZ")

	s := NewSession()
	assert.Equal(t, PhaseDisconnected, s.Phase)
	assert.False(t, s.Connected())
	assert.False(t, s.Pending())

	s = s.BeginConnect()
	assert.Equal(t, PhaseConnecting, s.Phase)
	assert.False(t, s.Connected())

	s = s.ConnectSucceeded(wallet)
	assert.Equal(t, PhaseConnectedIdle, s.Phase)
	assert.True(t, s.Connected())
	assert.Equal(t, wallet, s.Wallet)
	assert.Equal(t, "GsJY...j2yZ", s.WalletShort)
}

func TestSessionConnectFailed(t *testing.T) {
	s := NewSession().BeginConnect().ConnectFailed()
	assert.Equal(t, PhaseDisconnected, s.Phase)
	assert.True(t, s.Wallet.IsZero())
}

func TestSessionBeginSubmit(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()

	t.Run("submit while disconnected fails", func(t *testing.T) {
		_, err := NewSession().BeginSubmit()
		require.ErrorIs(t, err, ErrWalletUnavailable)
	})

	t.Run("submit while connecting fails", func(t *testing.T) {
		_, err := NewSession().BeginConnect().BeginSubmit()
		require.ErrorIs(t, err, ErrWalletUnavailable)
	})

	t.Run("submit while idle succeeds", func(t *testing.T) {
		s, err := NewSession().ConnectSucceeded(wallet).BeginSubmit()
		require.NoError(t, err)
		assert.Equal(t, PhaseConnectedSubmitting, s.Phase)
		assert.True(t, s.Pending())
	})

	t.Run("double submit is rejected", func(t *testing.T) {
		s, err := NewSession().ConnectSucceeded(wallet).BeginSubmit()
		require.NoError(t, err)

		_, err = s.BeginSubmit()
		require.ErrorIs(t, err, ErrSubmitInFlight)
	})

	t.Run("settle returns to idle and allows resubmission", func(t *testing.T) {
		s, err := NewSession().ConnectSucceeded(wallet).BeginSubmit()
		require.NoError(t, err)

		s = s.SettleSubmit()
		assert.Equal(t, PhaseConnectedIdle, s.Phase)

		_, err = s.BeginSubmit()
		require.NoError(t, err)
	})
}

func TestSessionWithFeed(t *testing.T) {
	feed := []DisplayTip{
		{TipperShort: "aaaa...bbbb", AmountSOL: 1.0, Message: "one", TimestampMillis: 2000},
		{TipperShort: "cccc...dddd", AmountSOL: 0.5, Message: "two", TimestampMillis: 1000},
	}

	s := NewSession().WithFeed(feed)
	require.Len(t, s.Feed, 2)

	// The session owns its copy; mutating the caller's slice must not leak in.
	feed[0].Message = "mutated"
	assert.Equal(t, "one", s.Feed[0].Message)
}

func TestSessionReset(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()

	s := NewSession().ConnectSucceeded(wallet).WithFeed([]DisplayTip{{Message: "hi"}})
	s = s.Reset()

	assert.Equal(t, PhaseDisconnected, s.Phase)
	assert.True(t, s.Wallet.IsZero())
	assert.Empty(t, s.Feed)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "disconnected", PhaseDisconnected.String())
	assert.Equal(t, "connecting", PhaseConnecting.String())
	assert.Equal(t, "connected", PhaseConnectedIdle.String())
	assert.Equal(t, "submitting", PhaseConnectedSubmitting.String())
}
