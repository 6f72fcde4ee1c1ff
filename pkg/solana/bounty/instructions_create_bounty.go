package bounty

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

const createBountyInstructionAccountCount = 10

type CreateBountyInstructionArgs struct {
	Address ed25519.PublicKey
	Memo    string
}

func (args *CreateBountyInstructionArgs) size() int {
	return (32 + // address
		binary.StringSize(args.Memo)) // memo
}

// CreateBountyInstructionAccounts are the accounts of a create_bounty call.
// Treasury is the owner of the fee destination: the treasury wallet when fees
// are routed to the treasury, or the bounty account itself when fees are held
// by the bounty.
type CreateBountyInstructionAccounts struct {
	Signer                  ed25519.PublicKey
	BountyAccount           ed25519.PublicKey
	Config                  ed25519.PublicKey
	Mint                    ed25519.PublicKey
	UserTokenAccount        ed25519.PublicKey
	Treasury                ed25519.PublicKey
	DestinationTokenAccount ed25519.PublicKey

	// Forwarded as is to the token program, typically the accounts required
	// by the mint's transfer hook.
	RemainingAccounts []solana.AccountMeta
}

func NewCreateBountyInstruction(
	accounts *CreateBountyInstructionAccounts,
	args *CreateBountyInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	data, offset := newInstructionData(CreateBountyInstructionDiscriminator, args.size())

	binary.PutKey32(data, args.Address, &offset)
	binary.PutString(data, args.Memo, &offset)

	ixAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.Signer,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.BountyAccount,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Config,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Mint,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.UserTokenAccount,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Treasury,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DestinationTokenAccount,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  TOKEN_2022_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  ASSOCIATED_TOKEN_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  SYSTEM_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
	}
	ixAccounts = append(ixAccounts, accounts.RemainingAccounts...)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: ixAccounts,
	}
}

// DecompileCreateBountyInstruction parses a create_bounty instruction. The
// memo length is bounded only by the instruction data, callers enforce
// MaxBountyInfoAccountMemoLength.
func DecompileCreateBountyInstruction(ix solana.Instruction) (*CreateBountyInstructionAccounts, *CreateBountyInstructionArgs, error) {
	if err := checkInstruction(ix, CreateBountyInstructionDiscriminator, createBountyInstructionAccountCount); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) < len(CreateBountyInstructionDiscriminator)+32 {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := len(CreateBountyInstructionDiscriminator)

	var args CreateBountyInstructionArgs
	binary.GetKey32(ix.Data, &args.Address, &offset)
	if err := binary.GetString(ix.Data, &args.Memo, len(ix.Data), &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}
	if offset != len(ix.Data) {
		return nil, nil, ErrInvalidInstructionData
	}

	return &CreateBountyInstructionAccounts{
		Signer:                  ix.Accounts[0].PublicKey,
		BountyAccount:           ix.Accounts[1].PublicKey,
		Config:                  ix.Accounts[2].PublicKey,
		Mint:                    ix.Accounts[3].PublicKey,
		UserTokenAccount:        ix.Accounts[4].PublicKey,
		Treasury:                ix.Accounts[5].PublicKey,
		DestinationTokenAccount: ix.Accounts[6].PublicKey,
		RemainingAccounts:       ix.Accounts[createBountyInstructionAccountCount:],
	}, &args, nil
}
