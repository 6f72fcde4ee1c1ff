package token

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L46
const MintSize = 82

// Extended Token-2022 state pads the base layout out to AccountSize, follows it
// with a single AccountType byte, and then a list of TLV encoded extensions.
const (
	accountTypeOffset = AccountSize
	extensionsOffset  = AccountSize + 1
	tlvHeaderSize     = 4
)

type AccountType byte

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeMint
	AccountTypeAccount
)

// ExtensionType identifies a Token-2022 TLV extension.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program-2022/src/extension/mod.rs#L1041
type ExtensionType uint16

const (
	ExtensionTypePermanentDelegate ExtensionType = 12
	ExtensionTypeTransferHook      ExtensionType = 14
)

const (
	permanentDelegateExtensionSize = ed25519.PublicKeySize
	transferHookExtensionSize      = 2 * ed25519.PublicKeySize
)

type Account struct {
	// The mint associated with this account
	Mint ed25519.PublicKey
	// The owner of this account.
	Owner ed25519.PublicKey
	// The amount of tokens this account holds.
	Amount uint64
	// If set, then the 'DelegatedAmount' represents the amount
	// authorized by the delegate.
	Delegate ed25519.PublicKey
	// The account's state
	State AccountState
	// If set, this is a native token.
	IsNative *uint64
	// The amount delegated
	DelegatedAmount uint64
	// Optional authority to close the account.
	CloseAuthority ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	b := make([]byte, AccountSize)

	var offset int
	binary.PutKey32(b, a.Mint, &offset)
	binary.PutKey32(b, a.Owner, &offset)
	binary.PutUint64(b, a.Amount, &offset)
	binary.PutOptionalKey32(b, a.Delegate, &offset)
	binary.PutUint8(b, uint8(a.State), &offset)
	binary.PutOptionalUint64(b, a.IsNative, &offset)
	binary.PutUint64(b, a.DelegatedAmount, &offset)
	binary.PutOptionalKey32(b, a.CloseAuthority, &offset)

	return b
}

// Unmarshal decodes a token account. Extended accounts are accepted and their
// extensions ignored.
func (a *Account) Unmarshal(b []byte) bool {
	if len(b) < AccountSize {
		return false
	}
	if len(b) > AccountSize && AccountType(b[accountTypeOffset]) != AccountTypeAccount {
		return false
	}

	var offset int
	var state uint8
	binary.GetKey32(b, &a.Mint, &offset)
	binary.GetKey32(b, &a.Owner, &offset)
	binary.GetUint64(b, &a.Amount, &offset)
	binary.GetOptionalKey32(b, &a.Delegate, &offset)
	binary.GetUint8(b, &state, &offset)
	binary.GetOptionalUint64(b, &a.IsNative, &offset)
	binary.GetUint64(b, &a.DelegatedAmount, &offset)
	binary.GetOptionalKey32(b, &a.CloseAuthority, &offset)
	a.State = AccountState(state)

	return true
}

// TransferHook is the Token-2022 transfer hook extension of a mint.
type TransferHook struct {
	Authority ed25519.PublicKey
	ProgramID ed25519.PublicKey
}

type Mint struct {
	// Optional authority used to mint new tokens.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens.
	Supply uint64
	// Number of base 10 digits to the right of the decimal place.
	Decimals byte
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey

	// Authority allowed to transfer or burn from any account of the mint.
	PermanentDelegate ed25519.PublicKey
	// Program invoked on every checked transfer of the mint.
	TransferHook *TransferHook
}

func (m *Mint) hasExtensions() bool {
	return len(m.PermanentDelegate) > 0 || m.TransferHook != nil
}

func (m *Mint) Marshal() []byte {
	size := MintSize
	if m.hasExtensions() {
		size = extensionsOffset
		if len(m.PermanentDelegate) > 0 {
			size += tlvHeaderSize + permanentDelegateExtensionSize
		}
		if m.TransferHook != nil {
			size += tlvHeaderSize + transferHookExtensionSize
		}
	}

	b := make([]byte, size)

	var offset int
	binary.PutOptionalKey32(b, m.MintAuthority, &offset)
	binary.PutUint64(b, m.Supply, &offset)
	binary.PutUint8(b, m.Decimals, &offset)
	binary.PutBool(b, m.IsInitialized, &offset)
	binary.PutOptionalKey32(b, m.FreezeAuthority, &offset)

	if !m.hasExtensions() {
		return b
	}

	b[accountTypeOffset] = byte(AccountTypeMint)
	offset = extensionsOffset
	if len(m.PermanentDelegate) > 0 {
		binary.PutUint16(b, uint16(ExtensionTypePermanentDelegate), &offset)
		binary.PutUint16(b, permanentDelegateExtensionSize, &offset)
		binary.PutNonZeroKey32(b, m.PermanentDelegate, &offset)
	}
	if m.TransferHook != nil {
		binary.PutUint16(b, uint16(ExtensionTypeTransferHook), &offset)
		binary.PutUint16(b, transferHookExtensionSize, &offset)
		binary.PutNonZeroKey32(b, m.TransferHook.Authority, &offset)
		binary.PutNonZeroKey32(b, m.TransferHook.ProgramID, &offset)
	}

	return b
}

// Unmarshal decodes a mint along with the extensions this package understands.
// Unknown extensions are skipped.
func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) != MintSize && len(b) <= AccountSize {
		return false
	}

	var offset int
	binary.GetOptionalKey32(b, &m.MintAuthority, &offset)
	binary.GetUint64(b, &m.Supply, &offset)
	binary.GetUint8(b, &m.Decimals, &offset)
	binary.GetBool(b, &m.IsInitialized, &offset)
	binary.GetOptionalKey32(b, &m.FreezeAuthority, &offset)

	m.PermanentDelegate = nil
	m.TransferHook = nil

	if len(b) == MintSize {
		return true
	}

	for _, pad := range b[MintSize:accountTypeOffset] {
		if pad != 0 {
			return false
		}
	}
	if AccountType(b[accountTypeOffset]) != AccountTypeMint {
		return false
	}

	offset = extensionsOffset
	for offset+tlvHeaderSize <= len(b) {
		var extensionType, length uint16
		binary.GetUint16(b, &extensionType, &offset)
		binary.GetUint16(b, &length, &offset)

		if extensionType == 0 {
			break
		}
		if offset+int(length) > len(b) {
			return false
		}

		value := offset
		switch ExtensionType(extensionType) {
		case ExtensionTypePermanentDelegate:
			if length != permanentDelegateExtensionSize {
				return false
			}
			binary.GetNonZeroKey32(b, &m.PermanentDelegate, &value)
		case ExtensionTypeTransferHook:
			if length != transferHookExtensionSize {
				return false
			}
			hook := &TransferHook{}
			binary.GetNonZeroKey32(b, &hook.Authority, &value)
			binary.GetNonZeroKey32(b, &hook.ProgramID, &value)
			m.TransferHook = hook
		}

		offset += int(length)
	}

	return true
}
