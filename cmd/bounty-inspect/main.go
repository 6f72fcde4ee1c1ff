// Command bounty-inspect prints bounty program state read from a Solana RPC
// node or from the postgres account store of a locally hosted program.
package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/code-payments/bounty-server/pkg/metrics"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
	"github.com/code-payments/bounty-server/pkg/solana/token"
	"github.com/code-payments/bounty-server/pkg/solana/transferhook"
)

const usage = `Usage: bounty-inspect [flags] <command> [args]

Commands:
  config               show the program config
  bounty <address>     show a single bounty
  bounties <owner>     list the bounties of an owner
  treasury             show the treasury's fee token account
  hook <mint>          show the transfer hook of a mint and its extra account metas

Flags:
`

const metricsShutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sourceFlag := flag.String("source", "rpc", "where state is read from (rpc, postgres)")
	rpcURLFlag := flag.String("rpc-url", "https://api.devnet.solana.com", "Solana RPC endpoint (or set SOLANA_RPC_URL env var)")
	commitmentFlag := flag.String("commitment", "confirmed", "RPC commitment (processed, confirmed, finalized)")
	treasuryFlag := flag.String("treasury", base58.Encode(bounty.TREASURY_WALLET), "treasury wallet for the treasury command")
	mintFlag := flag.String("mint", "", "mint for the treasury command, defaults to the configured required mint")
	verboseFlag := flag.Bool("verbose", false, "enable debug logging")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verboseFlag {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if envRPCURL := os.Getenv("SOLANA_RPC_URL"); envRPCURL != "" && !flag.CommandLine.Changed("rpc-url") {
		*rpcURLFlag = envRPCURL
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	ctx := context.Background()

	app, err := metrics.NewApplication("bounty-inspect")
	if err != nil {
		return err
	}
	if app != nil {
		defer app.Shutdown(metricsShutdownTimeout)

		var end func()
		ctx, end = metrics.StartTransaction(ctx, app, "bounty-inspect "+args[0])
		defer end()
	}

	var src source
	switch *sourceFlag {
	case "rpc":
		commitment, err := parseCommitment(*commitmentFlag)
		if err != nil {
			return err
		}
		src = newRPCSource(*rpcURLFlag, commitment)
	case "postgres":
		src, err = newPostgresSource(ctx)
		if err != nil {
			return err
		}
	default:
		return errors.Errorf("unsupported source %q", *sourceFlag)
	}

	command, args := args[0], args[1:]
	switch command {
	case "config":
		return showConfig(ctx, src)
	case "bounty":
		address, err := parseKeyArg(args, "address")
		if err != nil {
			return err
		}
		return showBounty(ctx, src, address)
	case "bounties":
		owner, err := parseKeyArg(args, "owner")
		if err != nil {
			return err
		}
		return showBounties(ctx, src, owner)
	case "treasury":
		treasury, err := parseKey(*treasuryFlag)
		if err != nil {
			return errors.Wrap(err, "invalid --treasury")
		}

		var mint ed25519.PublicKey
		if len(*mintFlag) > 0 {
			mint, err = parseKey(*mintFlag)
			if err != nil {
				return errors.Wrap(err, "invalid --mint")
			}
		}
		return showTreasury(ctx, src, treasury, mint)
	case "hook":
		mint, err := parseKeyArg(args, "mint")
		if err != nil {
			return err
		}
		return showHook(ctx, src, mint)
	}

	flag.Usage()
	return errors.Errorf("unknown command %q", command)
}

func showConfig(ctx context.Context, src source) error {
	config, address, err := src.GetProgramConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Program:  %s\n", base58.Encode(bounty.PROGRAM_ID))
	fmt.Printf("Config:   %s\n", base58.Encode(address))
	fmt.Printf("  Authority:           %s\n", base58.Encode(config.Authority))
	fmt.Printf("  Required token mint: %s\n", base58.Encode(config.RequiredTokenMint))
	return nil
}

func showBounty(ctx context.Context, src source, address ed25519.PublicKey) error {
	info, err := src.GetBounty(ctx, address)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", base58.Encode(address), info)
	return nil
}

func showBounties(ctx context.Context, src source, owner ed25519.PublicKey) error {
	owned, err := src.GetBountiesByOwner(ctx, owner)
	if err == bounty.ErrBountyNotFound {
		fmt.Printf("No bounties owned by %s\n", base58.Encode(owner))
		return nil
	} else if err != nil {
		return err
	}

	fmt.Printf("%d bounties owned by %s\n", len(owned), base58.Encode(owner))
	for _, item := range owned {
		fmt.Printf("  %s %s\n", base58.Encode(item.Address), item.Bounty)
	}
	return nil
}

func showTreasury(ctx context.Context, src source, treasury, mint ed25519.PublicKey) error {
	if mint == nil {
		config, _, err := src.GetProgramConfig(ctx)
		if err != nil {
			return errors.Wrap(err, "error getting required mint, set --mint to skip")
		}
		mint = config.RequiredTokenMint
	}

	address, bump, err := bounty.GetFeeTokenAccountAddress(&bounty.GetFeeTokenAccountAddressArgs{
		Owner: treasury,
		Mint:  mint,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Treasury:      %s\n", base58.Encode(treasury))
	fmt.Printf("Mint:          %s\n", base58.Encode(mint))
	fmt.Printf("Token account: %s (bump %d)\n", base58.Encode(address), bump)

	data, owner, err := src.GetAccount(ctx, address)
	if err == errAccountNotFound {
		fmt.Println("  not created")
		return nil
	} else if err != nil {
		return err
	}
	if !owner.Equal(ed25519.PublicKey(token.ProgramKey)) {
		return errors.Errorf("token account is owned by %s", base58.Encode(owner))
	}

	var state token.Account
	if !state.Unmarshal(data) {
		return errors.New("invalid token account data")
	}
	fmt.Printf("  Owner:  %s\n", base58.Encode(state.Owner))
	fmt.Printf("  Amount: %d\n", state.Amount)
	return nil
}

func showHook(ctx context.Context, src source, mintAddress ed25519.PublicKey) error {
	data, _, err := src.GetAccount(ctx, mintAddress)
	if err != nil {
		return errors.Wrap(err, "error getting mint")
	}

	var mint token.Mint
	if !mint.Unmarshal(data) {
		return errors.New("invalid mint data")
	}

	fmt.Printf("Mint:               %s\n", base58.Encode(mintAddress))
	fmt.Printf("Decimals:           %d\n", mint.Decimals)
	fmt.Printf("Supply:             %d\n", mint.Supply)
	if len(mint.PermanentDelegate) > 0 {
		fmt.Printf("Permanent delegate: %s\n", base58.Encode(mint.PermanentDelegate))
	}
	if mint.TransferHook == nil {
		fmt.Println("No transfer hook")
		return nil
	}
	fmt.Printf("Hook program:       %s\n", base58.Encode(mint.TransferHook.ProgramID))
	fmt.Printf("Hook authority:     %s\n", base58.Encode(mint.TransferHook.Authority))

	validation, _, err := transferhook.GetExtraAccountMetasAddress(mint.TransferHook.ProgramID, mintAddress)
	if err != nil {
		return err
	}
	fmt.Printf("Extra account metas: %s\n", base58.Encode(validation))

	data, _, err = src.GetAccount(ctx, validation)
	if err == errAccountNotFound {
		fmt.Println("  not created")
		return nil
	} else if err != nil {
		return err
	}

	var metas transferhook.ExtraAccountMetaList
	if err := metas.Unmarshal(data); err != nil {
		return errors.Wrap(err, "invalid extra account metas")
	}
	for i, meta := range metas {
		fmt.Printf("  %d: %s\n", i, describeExtraAccountMeta(meta))
	}
	return nil
}

func describeExtraAccountMeta(meta transferhook.ExtraAccountMeta) string {
	var flags []string
	if meta.IsSigner {
		flags = append(flags, "signer")
	}
	if meta.IsWritable {
		flags = append(flags, "writable")
	}

	var kind string
	switch {
	case meta.Discriminator == 0:
		kind = "fixed " + base58.Encode(meta.AddressConfig[:])
	case meta.Discriminator == 1:
		kind = "hook program pda"
	case meta.Discriminator >= 128:
		kind = fmt.Sprintf("pda of program at account %d", meta.Discriminator-128)
	default:
		kind = fmt.Sprintf("unknown discriminator %d", meta.Discriminator)
	}

	if len(flags) == 0 {
		return kind
	}
	return fmt.Sprintf("%s [%s]", kind, strings.Join(flags, ","))
}

func parseCommitment(value string) (solana.Commitment, error) {
	switch value {
	case "processed":
		return solana.CommitmentProcessed, nil
	case "confirmed":
		return solana.CommitmentConfirmed, nil
	case "finalized":
		return solana.CommitmentFinalized, nil
	}
	return solana.Commitment{}, errors.Errorf("unsupported commitment %q", value)
}

func parseKeyArg(args []string, name string) (ed25519.PublicKey, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("expected a single %s argument", name)
	}

	key, err := parseKey(args[0])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return key, nil
}

func parseKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, err
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid key length %d", len(decoded))
	}
	return decoded, nil
}
