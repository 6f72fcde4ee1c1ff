package bounty

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana"
)

type DeleteBountyInstructionAccounts struct {
	Signer        ed25519.PublicKey
	BountyAccount ed25519.PublicKey
	Owner         ed25519.PublicKey
}

// NewDeleteBountyInstruction closes a bounty account, refunding its lamports
// to the signer.
func NewDeleteBountyInstruction(
	accounts *DeleteBountyInstructionAccounts,
) solana.Instruction {
	data, _ := newInstructionData(DeleteBountyInstructionDiscriminator, 0)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Signer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.BountyAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Owner,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileDeleteBountyInstruction(ix solana.Instruction) (*DeleteBountyInstructionAccounts, error) {
	if err := checkInstruction(ix, DeleteBountyInstructionDiscriminator, 3); err != nil {
		return nil, err
	}
	if len(ix.Data) != len(DeleteBountyInstructionDiscriminator) {
		return nil, ErrInvalidInstructionData
	}

	return &DeleteBountyInstructionAccounts{
		Signer:        ix.Accounts[0].PublicKey,
		BountyAccount: ix.Accounts[1].PublicKey,
		Owner:         ix.Accounts[2].PublicKey,
	}, nil
}
