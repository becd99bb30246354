package tip

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Record is the on-chain tip record as stored in a program-owned account.
// Records are created exactly once per successful submission and never
// mutated or deleted by this client.
type Record struct {
	Tipper    solana.PublicKey
	Amount    uint64 // lamports
	Message   string
	Timestamp int64 // unix seconds
}

// RecordDiscriminator is the 8-byte account discriminator that identifies
// tip record accounts among all accounts owned by the program.
func RecordDiscriminator() []byte {
	h := sha256.Sum256([]byte("account:TipHistory"))
	return h[:8]
}

// DecodeRecord parses raw account data into a Record. Data whose shape does
// not match the expected layout fails with ErrDecode.
func DecodeRecord(data []byte) (*Record, error) {
	disc := RecordDiscriminator()
	if len(data) < len(disc) {
		return nil, fmt.Errorf("%w: account data too short (%d bytes)", ErrDecode, len(data))
	}
	if !bytes.Equal(data[:len(disc)], disc) {
		return nil, fmt.Errorf("%w: account discriminator mismatch", ErrDecode)
	}

	var rec Record
	if err := bin.NewBorshDecoder(data[len(disc):]).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &rec, nil
}

// EncodeRecord serializes a Record into the on-chain account layout,
// discriminator included. The program is the only writer in production;
// this is used by tests and fixtures.
func EncodeRecord(rec *Record) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(RecordDiscriminator())
	if err := bin.NewBorshEncoder(buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("failed to encode tip record: %w", err)
	}
	return buf.Bytes(), nil
}

// Display maps a Record to its ephemeral display form: shortened tipper
// address, SOL amount, and millisecond timestamp.
func (r *Record) Display() DisplayTip {
	return DisplayTip{
		TipperShort:     ShortenAddress(r.Tipper),
		AmountSOL:       ToSOL(r.Amount),
		Message:         r.Message,
		TimestampMillis: r.Timestamp * 1000,
	}
}
