package tip

import (
	"crypto/sha256"
	"strings"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTipInstruction(t *testing.T) {
	tipper := solana.NewWallet().PublicKey()
	recipient := solana.MustPublicKeyFromBase58("GsJYonU5Kz4MJBHZ5UFx9oyStBpXXswnZcFUorktj2yZ")

	req := Request{
		Tipper:    tipper,
		AmountSOL: 0.5,
		Message:   "Great work!",
		Timestamp: 1700000000,
	}

	recordAddr, _, err := DeriveTipRecordAddress(testProgramID, tipper, req.Timestamp)
	require.NoError(t, err)

	ix, err := BuildTipInstruction(req, recordAddr, testProgramID, recipient)
	require.NoError(t, err)

	assert.Equal(t, testProgramID, ix.ProgramID())

	// Account list is positional: tipper, recipient, record, system program.
	accounts := ix.Accounts()
	require.Len(t, accounts, 4)

	assert.Equal(t, tipper, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)

	assert.Equal(t, recipient, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable)

	assert.Equal(t, recordAddr, accounts[2].PublicKey)
	assert.False(t, accounts[2].IsSigner)
	assert.True(t, accounts[2].IsWritable)

	assert.Equal(t, solana.SystemProgramID, accounts[3].PublicKey)
	assert.False(t, accounts[3].IsSigner)
	assert.False(t, accounts[3].IsWritable)

	data, err := ix.Data()
	require.NoError(t, err)

	// Data starts with the method discriminator, then the Borsh args.
	expectedDisc := sha256.Sum256([]byte("global:tip"))
	require.GreaterOrEqual(t, len(data), 8)
	assert.Equal(t, expectedDisc[:8], data[:8])

	var args tipArgs
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&args))
	assert.Equal(t, uint64(500_000_000), args.Amount)
	assert.Equal(t, "Great work!", args.Message)
	assert.Equal(t, int64(1700000000), args.Timestamp)
}

func TestBuildTipInstruction_InvalidRequest(t *testing.T) {
	tipper := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	recordAddr, _, err := DeriveTipRecordAddress(testProgramID, tipper, 1700000000)
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name: "zero amount",
			req: Request{
				Tipper:    tipper,
				AmountSOL: 0,
				Message:   "hi",
				Timestamp: 1700000000,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "oversized message",
			req: Request{
				Tipper:    tipper,
				AmountSOL: 0.5,
				Message:   strings.Repeat("x", MaxMessageLength+1),
				Timestamp: 1700000000,
			},
			wantErr: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := BuildTipInstruction(tt.req, recordAddr, testProgramID, recipient)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, ix)
		})
	}
}
