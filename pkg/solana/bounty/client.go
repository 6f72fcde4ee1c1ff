package bounty

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana"
)

var (
	ErrProgramConfigNotFound = errors.New("program config not found")
	ErrBountyNotFound        = errors.New("bounty not found")
)

// Client reads bounty program state from a cluster.
type Client struct {
	sc         solana.Client
	commitment solana.Commitment
}

func NewClient(sc solana.Client, commitment solana.Commitment) *Client {
	return &Client{
		sc:         sc,
		commitment: commitment,
	}
}

// GetProgramConfig returns the config account and its address.
func (c *Client) GetProgramConfig() (*ProgramConfigAccount, ed25519.PublicKey, error) {
	address, _, err := GetProgramConfigAddress()
	if err != nil {
		return nil, nil, err
	}

	info, err := c.getProgramAccount(address)
	if err == solana.ErrNoAccountInfo {
		return nil, nil, ErrProgramConfigNotFound
	} else if err != nil {
		return nil, nil, err
	}

	var config ProgramConfigAccount
	if err := config.Unmarshal(info.Data); err != nil {
		return nil, nil, errors.Wrap(err, "invalid program config account")
	}
	return &config, address, nil
}

func (c *Client) GetBounty(address ed25519.PublicKey) (*BountyInfoAccount, error) {
	info, err := c.getProgramAccount(address)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrBountyNotFound
	} else if err != nil {
		return nil, err
	}

	var bounty BountyInfoAccount
	if err := bounty.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrap(err, "invalid bounty account")
	}
	return &bounty, nil
}

type OwnedBounty struct {
	Address ed25519.PublicKey
	Bounty  *BountyInfoAccount
}

// GetBountiesByOwner returns all bounties owned by a wallet along with the
// slot the query was evaluated at.
func (c *Client) GetBountiesByOwner(owner ed25519.PublicKey) ([]OwnedBounty, uint64, error) {
	accounts, slot, err := c.sc.GetFilteredProgramAccounts(
		PROGRAM_ID,
		c.commitment,
		solana.MemcmpFilter{Offset: 0, Bytes: BountyInfoAccountDiscriminator},
		solana.MemcmpFilter{Offset: 8, Bytes: owner},
	)
	if err != nil {
		return nil, 0, err
	}

	res := make([]OwnedBounty, 0, len(accounts))
	for _, account := range accounts {
		var bounty BountyInfoAccount
		if err := bounty.Unmarshal(account.Info.Data); err != nil {
			return nil, 0, errors.Wrapf(err, "invalid bounty account at index %d", len(res))
		}
		res = append(res, OwnedBounty{
			Address: account.Address,
			Bounty:  &bounty,
		})
	}
	return res, slot, nil
}

func (c *Client) getProgramAccount(address ed25519.PublicKey) (*solana.AccountInfo, error) {
	info, err := c.sc.GetAccountInfo(address, c.commitment)
	if err != nil {
		return nil, err
	}

	if !ed25519.PublicKey(info.Owner).Equal(PROGRAM_ID) {
		return nil, errors.Wrap(ErrInvalidProgram, "account not owned by bounty program")
	}
	return &info, nil
}
