package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// AccountMeta references an account used by an instruction along with the
// privileges the instruction was granted for it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta creates a new AccountMeta representing a writable account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

func (m AccountMeta) String() string {
	return fmt.Sprintf("%s(signer=%t,writable=%t)", base58.Encode(m.PublicKey), m.IsSigner, m.IsWritable)
}

// Instruction represents a transaction instruction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// IsSigner reports whether any meta for the key carries a signature. Keys may
// appear more than once in an account list.
func (i Instruction) IsSigner(key ed25519.PublicKey) bool {
	for _, account := range i.Accounts {
		if account.IsSigner && bytes.Equal(account.PublicKey, key) {
			return true
		}
	}
	return false
}

// Contains reports whether the key is referenced by the instruction.
func (i Instruction) Contains(key ed25519.PublicKey) bool {
	for _, account := range i.Accounts {
		if bytes.Equal(account.PublicKey, key) {
			return true
		}
	}
	return false
}

// WritableKeys returns the deduplicated set of writable account keys, in the
// order they first appear.
func (i Instruction) WritableKeys() []ed25519.PublicKey {
	var res []ed25519.PublicKey
	seen := make(map[string]struct{})
	for _, account := range i.Accounts {
		if !account.IsWritable {
			continue
		}

		k := string(account.PublicKey)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		res = append(res, account.PublicKey)
	}
	return res
}
