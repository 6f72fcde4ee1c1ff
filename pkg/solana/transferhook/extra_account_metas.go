package transferhook

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana"
)

const ExtraAccountMetaSize = 1 + 32 + 1 + 1

// ExtraAccountMeta is a single entry of a validation account. Discriminator 0
// is a fixed address, 1 a seed list resolved against the hook program, and
// 128+ a seed list resolved against the program at that account index.
type ExtraAccountMeta struct {
	Discriminator uint8
	AddressConfig [32]byte
	IsSigner      bool
	IsWritable    bool
}

// NewFixedExtraAccountMeta references a literal address.
func NewFixedExtraAccountMeta(address ed25519.PublicKey, isSigner, isWritable bool) ExtraAccountMeta {
	meta := ExtraAccountMeta{
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
	copy(meta.AddressConfig[:], address)
	return meta
}

// Seed types understood in a packed seed config.
const (
	seedTypeLiteral     = 1
	seedTypeInstruction = 2
	seedTypeAccountKey  = 3
)

// NewAccountKeySeedExtraAccountMeta references a PDA of the hook program whose
// seeds are an optional literal prefix followed by the key of the account at
// index.
func NewAccountKeySeedExtraAccountMeta(prefix []byte, index uint8, isSigner, isWritable bool) (ExtraAccountMeta, error) {
	size := 2
	if len(prefix) > 0 {
		size += 2 + len(prefix)
	}
	if size > 32 {
		return ExtraAccountMeta{}, errors.New("seed config too large")
	}

	meta := ExtraAccountMeta{
		Discriminator: 1,
		IsSigner:      isSigner,
		IsWritable:    isWritable,
	}

	var offset int
	if len(prefix) > 0 {
		meta.AddressConfig[0] = seedTypeLiteral
		meta.AddressConfig[1] = byte(len(prefix))
		offset = 2 + copy(meta.AddressConfig[2:], prefix)
	}
	meta.AddressConfig[offset] = seedTypeAccountKey
	meta.AddressConfig[offset+1] = index
	return meta, nil
}

// Resolve computes the address of the meta given the accounts of an Execute
// instruction. Seeds derived from instruction data are not supported.
func (m ExtraAccountMeta) Resolve(hookProgram ed25519.PublicKey, accounts []solana.AccountMeta) (ed25519.PublicKey, error) {
	if m.Discriminator == 0 {
		return append(ed25519.PublicKey{}, m.AddressConfig[:]...), nil
	}

	program := hookProgram
	if m.Discriminator >= 128 {
		index := int(m.Discriminator - 128)
		if index >= len(accounts) {
			return nil, errors.Wrapf(solana.ErrNotEnoughAccountKeys, "program index %d", index)
		}
		program = accounts[index].PublicKey
	} else if m.Discriminator != 1 {
		return nil, errors.Wrapf(solana.ErrInvalidAccountData, "unknown discriminator %d", m.Discriminator)
	}

	var seeds [][]byte
	config := m.AddressConfig[:]
	for i := 0; i < len(config) && config[i] != 0; {
		switch config[i] {
		case seedTypeLiteral:
			if i+2 > len(config) || i+2+int(config[i+1]) > len(config) {
				return nil, errors.Wrap(solana.ErrInvalidAccountData, "literal seed overflows config")
			}
			seeds = append(seeds, config[i+2:i+2+int(config[i+1])])
			i += 2 + int(config[i+1])
		case seedTypeAccountKey:
			if i+2 > len(config) {
				return nil, errors.Wrap(solana.ErrInvalidAccountData, "account key seed overflows config")
			}
			index := int(config[i+1])
			if index >= len(accounts) {
				return nil, errors.Wrapf(solana.ErrNotEnoughAccountKeys, "seed account index %d", index)
			}
			seeds = append(seeds, accounts[index].PublicKey)
			i += 2
		case seedTypeInstruction:
			return nil, errors.Wrap(solana.ErrInvalidAccountData, "instruction data seeds are not supported")
		default:
			return nil, errors.Wrapf(solana.ErrInvalidAccountData, "unknown seed type %d", config[i])
		}
	}

	address, _, err := solana.FindProgramAddressAndBump(program, seeds...)
	return address, err
}

// ExtraAccountMetaList is the contents of a validation account: the Execute
// discriminator, a u32 byte length, a u32 count and the packed entries.
type ExtraAccountMetaList []ExtraAccountMeta

func (l ExtraAccountMetaList) Size() int {
	return len(ExecuteDiscriminator) + 4 + 4 + len(l)*ExtraAccountMetaSize
}

func (l ExtraAccountMetaList) Marshal() []byte {
	b := make([]byte, l.Size())

	offset := copy(b, ExecuteDiscriminator)
	binary.LittleEndian.PutUint32(b[offset:], uint32(4+len(l)*ExtraAccountMetaSize))
	offset += 4
	binary.LittleEndian.PutUint32(b[offset:], uint32(len(l)))
	offset += 4

	for _, meta := range l {
		b[offset] = meta.Discriminator
		copy(b[offset+1:], meta.AddressConfig[:])
		if meta.IsSigner {
			b[offset+33] = 1
		}
		if meta.IsWritable {
			b[offset+34] = 1
		}
		offset += ExtraAccountMetaSize
	}

	return b
}

func (l *ExtraAccountMetaList) Unmarshal(b []byte) error {
	header := len(ExecuteDiscriminator) + 4 + 4
	if len(b) < header {
		return errors.Wrap(solana.ErrAccountDataTooSmall, "extra account meta list header")
	}
	if !bytes.Equal(b[:len(ExecuteDiscriminator)], ExecuteDiscriminator) {
		return errors.Wrap(solana.ErrInvalidAccountData, "unexpected discriminator")
	}

	length := int(binary.LittleEndian.Uint32(b[len(ExecuteDiscriminator):]))
	count := int(binary.LittleEndian.Uint32(b[len(ExecuteDiscriminator)+4:]))
	if length != 4+count*ExtraAccountMetaSize || len(b) < header+count*ExtraAccountMetaSize {
		return errors.Wrapf(solana.ErrInvalidAccountData, "invalid extra account meta count %d", count)
	}

	res := make(ExtraAccountMetaList, count)
	offset := header
	for i := range res {
		res[i].Discriminator = b[offset]
		copy(res[i].AddressConfig[:], b[offset+1:offset+33])
		res[i].IsSigner = b[offset+33] != 0
		res[i].IsWritable = b[offset+34] != 0
		offset += ExtraAccountMetaSize
	}

	*l = res
	return nil
}

// ResolveAll resolves each entry in order. Later entries may reference earlier
// ones by index, so accounts is extended as resolution proceeds.
func (l ExtraAccountMetaList) ResolveAll(hookProgram ed25519.PublicKey, executeAccounts []solana.AccountMeta) ([]solana.AccountMeta, error) {
	accounts := append([]solana.AccountMeta{}, executeAccounts...)
	res := make([]solana.AccountMeta, 0, len(l))
	for i, meta := range l {
		address, err := meta.Resolve(hookProgram, accounts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve extra account %d", i)
		}

		resolved := solana.AccountMeta{
			PublicKey:  address,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}
		accounts = append(accounts, resolved)
		res = append(res, resolved)
	}
	return res, nil
}
