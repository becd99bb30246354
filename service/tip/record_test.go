package tip

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := &Record{
		Tipper:    solana.NewWallet().PublicKey(),
		Amount:    500_000_000,
		Message:   "Great work!",
		Timestamp: 1700000000,
	}

	data, err := EncodeRecord(rec)
	require.NoError(t, err)

	decoded, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)
}

func TestDecodeRecord_Malformed(t *testing.T) {
	valid, err := EncodeRecord(&Record{
		Tipper:    solana.NewWallet().PublicKey(),
		Amount:    100_000_000,
		Message:   "thanks",
		Timestamp: 1700000000,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "empty data",
			data: []byte{},
		},
		{
			name: "shorter than discriminator",
			data: []byte{0x01, 0x02, 0x03},
		},
		{
			name: "wrong discriminator",
			data: append([]byte{0, 0, 0, 0, 0, 0, 0, 0}, valid[8:]...),
		},
		{
			name: "truncated body",
			data: valid[:len(valid)-4],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord(tt.data)
			require.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, rec)
		})
	}
}

func TestRecordDisplay(t *testing.T) {
	tipper := solana.MustPublicKeyFromBase58("GsJYonU5Kz4MJBHZ5UFx9oyStBpXXswnZcFUorktj2yZ")
	rec := &Record{
		Tipper:    tipper,
		Amount:    500_000_000,
		Message:   "Great work!",
		Timestamp: 1700000000,
	}

	d := rec.Display()
	assert.Equal(t, "GsJY...j2yZ", d.TipperShort)
	assert.Equal(t, 0.5, d.AmountSOL)
	assert.Equal(t, "Great work!", d.Message)
	assert.Equal(t, int64(1700000000000), d.TimestampMillis)
}
