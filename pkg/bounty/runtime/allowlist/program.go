// Package allowlist implements the allow/block list transfer hook. Every token
// account of a mint may have a wallet entry, and transfers are only permitted
// into accounts explicitly allowed and out of accounts that aren't blocked.
package allowlist

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/system"
	"github.com/code-payments/bounty-server/pkg/solana/transferhook"
)

// DefaultProgramID is the devnet deployment of the hook.
//
// Current key: CW8xj9GkRSGqG2MtgizRKci5RNYeug4FofFJUAJBhJmA
var DefaultProgramID = solana.MustBase58Decode("CW8xj9GkRSGqG2MtgizRKci5RNYeug4FofFJUAJBhJmA")

var (
	InitConfigDiscriminator = []byte{0x17, 0xeb, 0x73, 0xe8, 0xa8, 0x60, 0x01, 0xe7}
	InitWalletDiscriminator = []byte{219, 89, 106, 226, 125, 109, 126, 231}

	ConfigAccountDiscriminator = []byte{0x9b, 0x0c, 0xaa, 0xe0, 0x1e, 0xfa, 0xcc, 0x82}
	WalletAccountDiscriminator = []byte{0x44, 0x84, 0xf1, 0xba, 0x6b, 0x89, 0x41, 0x9f}
)

const (
	ErrorUnauthorized solana.CustomError = iota + 6000
	ErrorInvalidConfig
	ErrorInvalidWallet
	ErrorWalletBlocked
	ErrorWalletNotAllowed
)

type WalletStatus uint8

const (
	WalletStatusAllow WalletStatus = iota
	WalletStatusBlock
	WalletStatusNone
)

func (s WalletStatus) String() string {
	switch s {
	case WalletStatusAllow:
		return "allow"
	case WalletStatusBlock:
		return "block"
	case WalletStatusNone:
		return "none"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

const (
	ConfigAccountSize = 8 + 32 + 32
	WalletAccountSize = 8 + 1 + 32
)

// ConfigAccount is the per-mint hook configuration
type ConfigAccount struct {
	Authority ed25519.PublicKey
	Mint      ed25519.PublicKey
}

func (a *ConfigAccount) Marshal() []byte {
	b := make([]byte, ConfigAccountSize)
	offset := copy(b, ConfigAccountDiscriminator)
	offset += copy(b[offset:], a.Authority)
	copy(b[offset:], a.Mint)
	return b
}

func (a *ConfigAccount) Unmarshal(b []byte) error {
	if len(b) < ConfigAccountSize || !bytes.Equal(b[:8], ConfigAccountDiscriminator) {
		return ErrorInvalidConfig
	}
	a.Authority = append(ed25519.PublicKey{}, b[8:40]...)
	a.Mint = append(ed25519.PublicKey{}, b[40:72]...)
	return nil
}

// WalletAccount records the list status of a single token account
type WalletAccount struct {
	Status       WalletStatus
	TokenAccount ed25519.PublicKey
}

func (a *WalletAccount) Marshal() []byte {
	b := make([]byte, WalletAccountSize)
	offset := copy(b, WalletAccountDiscriminator)
	b[offset] = byte(a.Status)
	copy(b[offset+1:], a.TokenAccount)
	return b
}

func (a *WalletAccount) Unmarshal(b []byte) error {
	if len(b) < WalletAccountSize || !bytes.Equal(b[:8], WalletAccountDiscriminator) {
		return ErrorInvalidWallet
	}
	a.Status = WalletStatus(b[8])
	a.TokenAccount = append(ed25519.PublicKey{}, b[9:41]...)
	return nil
}

func (a *WalletAccount) String() string {
	return fmt.Sprintf("WalletAccount{status=%s,token_account=%s}", a.Status, base58.Encode(a.TokenAccount))
}

// GetConfigAddress returns the hook configuration address of a mint
func GetConfigAddress(program, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, mint)
}

// GetWalletAddress returns the list entry address of a token account
func GetWalletAddress(program, tokenAccount ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, tokenAccount)
}

// ExtraAccountMetas returns the validation list the hook expects: the wallet
// entries of the transfer's source and destination token accounts.
func ExtraAccountMetas() transferhook.ExtraAccountMetaList {
	// Execute account indices: 0 source, 2 destination
	source, _ := transferhook.NewAccountKeySeedExtraAccountMeta(nil, 0, false, false)
	destination, _ := transferhook.NewAccountKeySeedExtraAccountMeta(nil, 2, false, false)
	return transferhook.ExtraAccountMetaList{source, destination}
}

type InitConfigInstructionAccounts struct {
	Payer  ed25519.PublicKey
	Config ed25519.PublicKey
	Mint   ed25519.PublicKey
}

// NewInitConfigInstruction configures the hook for a mint with the payer as
// its authority.
func NewInitConfigInstruction(program ed25519.PublicKey, accounts *InitConfigInstructionAccounts) solana.Instruction {
	return solana.Instruction{
		Program: program,
		Accounts: []solana.AccountMeta{
			{PublicKey: accounts.Payer, IsWritable: true, IsSigner: true},
			{PublicKey: accounts.Config, IsWritable: true},
			{PublicKey: accounts.Mint},
			{PublicKey: system.ProgramKey},
		},
		Data: append([]byte{}, InitConfigDiscriminator...),
	}
}

type InitWalletInstructionAccounts struct {
	Payer        ed25519.PublicKey
	Wallet       ed25519.PublicKey
	Config       ed25519.PublicKey
	Authority    ed25519.PublicKey
	TokenAccount ed25519.PublicKey
}

type InitWalletInstructionArgs struct {
	Status WalletStatus
}

// NewInitWalletInstruction creates the list entry of a token account. The
// token account follows the deployed program's five accounts so the entry's
// seed can be verified.
func NewInitWalletInstruction(program ed25519.PublicKey, accounts *InitWalletInstructionAccounts, args *InitWalletInstructionArgs) solana.Instruction {
	data := make([]byte, len(InitWalletDiscriminator)+1)
	copy(data, InitWalletDiscriminator)
	data[len(InitWalletDiscriminator)] = byte(args.Status)

	return solana.Instruction{
		Program: program,
		Accounts: []solana.AccountMeta{
			{PublicKey: accounts.Payer, IsWritable: true, IsSigner: true},
			{PublicKey: system.ProgramKey},
			{PublicKey: accounts.Wallet, IsWritable: true},
			{PublicKey: accounts.Config},
			{PublicKey: accounts.Authority, IsSigner: true},
			{PublicKey: accounts.TokenAccount},
		},
		Data: data,
	}
}

func checkAccounts(ix solana.Instruction, count int) error {
	if len(ix.Accounts) < count {
		return errors.Wrapf(solana.ErrNotEnoughAccountKeys, "invalid number of accounts: %d (expected %d)", len(ix.Accounts), count)
	}
	return nil
}
