package bounty

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana"
)

var (
	ProgramConfigPrefix = []byte("program_config")
)

// GetProgramConfigAddress returns the address of the program's singleton
// config account.
func GetProgramConfigAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		ProgramConfigPrefix,
	)
}

type GetFeeTokenAccountAddressArgs struct {
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey
}

// GetFeeTokenAccountAddress returns the Token-2022 associated account of a fee
// recipient, either the treasury wallet or a bounty account.
func GetFeeTokenAccountAddress(args *GetFeeTokenAccountAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		ASSOCIATED_TOKEN_PROGRAM_ID,
		args.Owner,
		TOKEN_2022_PROGRAM_ID,
		args.Mint,
	)
}
