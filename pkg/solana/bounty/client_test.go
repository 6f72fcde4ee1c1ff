package bounty

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/solana"
)

type fakeSolanaClient struct {
	accounts map[string]solana.AccountInfo
	filters  []solana.MemcmpFilter
}

func (c *fakeSolanaClient) GetAccountInfo(key ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	info, ok := c.accounts[base58.Encode(key)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (c *fakeSolanaClient) GetMultipleAccounts(keys []ed25519.PublicKey, commitment solana.Commitment) ([]*solana.AccountInfo, error) {
	res := make([]*solana.AccountInfo, len(keys))
	for i, key := range keys {
		if info, err := c.GetAccountInfo(key, commitment); err == nil {
			res[i] = &info
		}
	}
	return res, nil
}

func (c *fakeSolanaClient) GetFilteredProgramAccounts(program ed25519.PublicKey, _ solana.Commitment, filters ...solana.MemcmpFilter) ([]solana.ProgramAccount, uint64, error) {
	c.filters = filters

	var res []solana.ProgramAccount
	for address, info := range c.accounts {
		if !bytes.Equal(info.Owner, program) {
			continue
		}

		matches := true
		for _, filter := range filters {
			end := int(filter.Offset) + len(filter.Bytes)
			if end > len(info.Data) || !bytes.Equal(info.Data[filter.Offset:end], filter.Bytes) {
				matches = false
				break
			}
		}
		if matches {
			res = append(res, solana.ProgramAccount{
				Address: solana.MustBase58Decode(address),
				Info:    info,
			})
		}
	}
	return res, 99, nil
}

func (c *fakeSolanaClient) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	return solana.RentExemptBalance(size), nil
}

func (c *fakeSolanaClient) GetSlot(solana.Commitment) (uint64, error) {
	return 99, nil
}

func TestClient(t *testing.T) {
	keys := generateKeys(t, 6)
	configAddress, _, err := GetProgramConfigAddress()
	require.NoError(t, err)

	config := &ProgramConfigAccount{Authority: keys[0], RequiredTokenMint: keys[1]}
	owned := &BountyInfoAccount{Owner: keys[2], Address: keys[0], Memo: "mine", CreatedAt: 1, UpdatedAt: 2}
	other := &BountyInfoAccount{Owner: keys[3], Address: keys[0], Memo: "theirs", CreatedAt: 1, UpdatedAt: 1}

	sc := &fakeSolanaClient{
		accounts: map[string]solana.AccountInfo{
			base58.Encode(configAddress): {Owner: PROGRAM_ID, Data: config.Marshal()},
			base58.Encode(keys[4]):       {Owner: PROGRAM_ID, Data: owned.Marshal()},
			base58.Encode(keys[5]):       {Owner: PROGRAM_ID, Data: other.Marshal()},
		},
	}
	client := NewClient(sc, solana.CommitmentConfirmed)

	actualConfig, actualAddress, err := client.GetProgramConfig()
	require.NoError(t, err)
	assert.Equal(t, config, actualConfig)
	assert.Equal(t, configAddress, actualAddress)

	actualBounty, err := client.GetBounty(keys[4])
	require.NoError(t, err)
	assert.Equal(t, owned, actualBounty)

	_, err = client.GetBounty(keys[0])
	assert.Equal(t, ErrBountyNotFound, err)

	_, err = client.GetBounty(configAddress)
	assert.Error(t, err)

	bounties, slot, err := client.GetBountiesByOwner(keys[2])
	require.NoError(t, err)
	assert.EqualValues(t, 99, slot)
	require.Len(t, bounties, 1)
	assert.Equal(t, keys[4], bounties[0].Address)
	assert.Equal(t, owned, bounties[0].Bounty)

	require.Len(t, sc.filters, 2)
	assert.Equal(t, BountyInfoAccountDiscriminator, sc.filters[0].Bytes)
	assert.EqualValues(t, 8, sc.filters[1].Offset)

	// Accounts owned by other programs aren't bounty state.
	sc.accounts[base58.Encode(keys[4])] = solana.AccountInfo{Owner: keys[0], Data: owned.Marshal()}
	_, err = client.GetBounty(keys[4])
	assert.ErrorIs(t, err, ErrInvalidProgram)

	delete(sc.accounts, base58.Encode(configAddress))
	_, _, err = client.GetProgramConfig()
	assert.Equal(t, ErrProgramConfigNotFound, err)
}
