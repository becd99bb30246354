package tip

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// tipArgs is the Borsh-encoded argument block of the program's tip
// instruction: amount in lamports, message, unix-second timestamp.
type tipArgs struct {
	Amount    uint64
	Message   string
	Timestamp int64
}

// anchorInstructionDiscriminator returns the 8-byte discriminator the
// program uses to dispatch an instruction by name.
func anchorInstructionDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

// BuildTipInstruction assembles the unsigned tip instruction for the given
// request. The request is validated first; nothing is constructed for an
// invalid amount or message.
//
// The account list is positional and part of the protocol contract:
// tipper (signer, writable), recipient (writable), tip record account
// (writable, created by the program), system program (read-only).
func BuildTipInstruction(req Request, recordAddr, programID, recipient solana.PublicKey) (solana.Instruction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lamports, err := ToLamports(req.AmountSOL)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	buf.Write(anchorInstructionDiscriminator("tip"))
	if err := bin.NewBorshEncoder(buf).Encode(tipArgs{
		Amount:    lamports,
		Message:   req.Message,
		Timestamp: req.Timestamp,
	}); err != nil {
		return nil, fmt.Errorf("failed to encode tip arguments: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(req.Tipper, true, true),
		solana.NewAccountMeta(recipient, true, false),
		solana.NewAccountMeta(recordAddr, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}

	return solana.NewInstruction(programID, accounts, buf.Bytes()), nil
}
