package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"
)

const (
	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	rateLimitedCode = 429

	maxRetries = 3
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

var (
	ErrNoAccountInfo = errors.New("no account info")
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount)
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

// ProgramAccount is an account returned by a getProgramAccounts query.
type ProgramAccount struct {
	Address ed25519.PublicKey
	Info    AccountInfo
}

// MemcmpFilter matches accounts whose data contains Bytes at Offset.
type MemcmpFilter struct {
	Offset uint
	Bytes  []byte
}

// Client provides an interaction with the Solana JSON RPC API.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetMultipleAccounts([]ed25519.PublicKey, Commitment) ([]*AccountInfo, error)
	GetFilteredProgramAccounts(program ed25519.PublicKey, commitment Commitment, filters ...MemcmpFilter) ([]ProgramAccount, uint64, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	GetSlot(Commitment) (uint64, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rpcAccount struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
}

func (a *rpcAccount) toAccountInfo() (info AccountInfo, err error) {
	info.Owner, err = base58.Decode(a.Owner)
	if err != nil {
		return info, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(a.Data) > 0 {
		info.Data, err = base64.StdEncoding.DecodeString(a.Data[0])
		if err != nil {
			return info, errors.Wrap(err, "invalid base64 encoded data")
		}
	}

	info.Lamports = a.Lamports
	info.Executable = a.Executable
	return info, nil
}

type client struct {
	log        *logrus.Entry
	client     jsonrpc.RPCClient
	newBackOff func() backoff.BackOff
}

// New returns a client using the specified endpoint.
func New(endpoint string) Client {
	return NewWithRPCOptions(endpoint, nil)
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Client {
	return &client{
		log:    logrus.StandardLogger().WithField("type", "solana/client"),
		client: jsonrpc.NewClientWithOpts(endpoint, opts),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 10 * time.Second
			b.RandomizationFactor = 0.1
			return backoff.WithMaxRetries(b, maxRetries)
		},
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	return backoff.Retry(func() error {
		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		err = c.handleRpcError(method, err)
		if err == errRateLimited || err == errServiceError {
			return err
		}
		return backoff.Permanent(err)
	}, c.newBackOff())
}

func (c *client) handleRpcError(method string, err error) error {
	switch typed := err.(type) {
	case *jsonrpc.RPCError:
		if typed.Code == rateLimitedCode {
			c.log.WithField("method", method).Warn("rate limited")
			return errRateLimited
		}
		if typed.Code >= 500 || typed.Code == rpcNodeUnhealthyCode {
			return errServiceError
		}
	case *jsonrpc.HTTPError:
		if typed.Code == rateLimitedCode {
			c.log.WithField("method", method).Warn("rate limited")
			return errRateLimited
		}
		if typed.Code >= 500 {
			return errServiceError
		}
	}

	return err
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetSlot(commitment Commitment) (slot uint64, err error) {
	// note: the commitment has to be wrapped in an []interface{}, otherwise the
	// jsonrpc library reflects the struct into the params object directly.
	if err := c.call(&slot, "getSlot", []interface{}{commitment}); err != nil {
		return 0, errors.Wrapf(err, "getSlot() failed to send request")
	}

	return slot, nil
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	var resp struct {
		Value *rpcAccount `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	if err := c.call(&resp, "getAccountInfo", base58.Encode(account), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}

	return resp.Value.toAccountInfo()
}

// GetMultipleAccounts returns account infos in request order. Missing accounts
// are returned as nil entries.
func (c *client) GetMultipleAccounts(accounts []ed25519.PublicKey, commitment Commitment) ([]*AccountInfo, error) {
	var resp struct {
		Value []*rpcAccount `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	addresses := make([]string, len(accounts))
	for i, account := range accounts {
		addresses[i] = base58.Encode(account)
	}

	if err := c.call(&resp, "getMultipleAccounts", addresses, rpcConfig); err != nil {
		return nil, errors.Wrap(err, "getMultipleAccounts() failed to send request")
	}

	if len(resp.Value) != len(accounts) {
		return nil, errors.Errorf("unexpected number of accounts: %d (expected %d)", len(resp.Value), len(accounts))
	}

	res := make([]*AccountInfo, len(accounts))
	for i, value := range resp.Value {
		if value == nil {
			continue
		}

		info, err := value.toAccountInfo()
		if err != nil {
			return nil, err
		}
		res[i] = &info
	}
	return res, nil
}

func (c *client) GetFilteredProgramAccounts(program ed25519.PublicKey, commitment Commitment, filters ...MemcmpFilter) ([]ProgramAccount, uint64, error) {
	type memcmpFilter struct {
		Offset uint   `json:"offset"`
		Bytes  string `json:"bytes"`
	}

	type filter struct {
		Memcmp memcmpFilter `json:"memcmp"`
	}

	config := struct {
		Commitment  string   `json:"commitment"`
		Encoding    string   `json:"encoding"`
		Filters     []filter `json:"filters"`
		WithContext bool     `json:"withContext"`
	}{
		Commitment:  commitment.Commitment,
		Encoding:    "base64",
		WithContext: true,
	}
	for _, f := range filters {
		config.Filters = append(config.Filters, filter{
			Memcmp: memcmpFilter{
				Offset: f.Offset,
				Bytes:  base58.Encode(f.Bytes),
			},
		})
	}

	var resp struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value []struct {
			PubKey  string     `json:"pubkey"`
			Account rpcAccount `json:"account"`
		} `json:"value"`
	}
	if err := c.call(&resp, "getProgramAccounts", base58.Encode(program), config); err != nil {
		return nil, 0, errors.Wrap(err, "getProgramAccounts() failed to send request")
	}

	res := make([]ProgramAccount, 0, len(resp.Value))
	for _, result := range resp.Value {
		address, err := base58.Decode(result.PubKey)
		if err != nil {
			return nil, 0, errors.Wrap(err, "invalid base58 encoded account address")
		}

		info, err := result.Account.toAccountInfo()
		if err != nil {
			return nil, 0, err
		}

		res = append(res, ProgramAccount{
			Address: address,
			Info:    info,
		})
	}
	return res, resp.Context.Slot, nil
}
