package tip

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// NamespaceTipHistory is the seed namespace tag for tip record addresses.
// It is part of the protocol wire contract and must match the on-chain
// program byte for byte.
const NamespaceTipHistory = "tip_history"

// DeriveTipRecordAddress computes the deterministic program-derived address
// for a tip record from the tipper and the second-granularity timestamp.
//
// The timestamp seed is encoded as a fixed-width 8-byte big-endian integer;
// width and endianness are part of the on-chain program's expectation, so a
// mismatch makes the program compute a different address and reject the
// transaction. Two tips from the same tipper in the same second derive the
// same address, so the second submission deterministically fails on-chain.
func DeriveTipRecordAddress(programID, tipper solana.PublicKey, timestamp int64) (solana.PublicKey, uint8, error) {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(timestamp))

	seeds := [][]byte{
		[]byte(NamespaceTipHistory),
		tipper.Bytes(),
		ts[:],
	}

	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ErrDerivationExhausted, err)
	}
	return addr, bump, nil
}
