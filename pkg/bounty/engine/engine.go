// Package engine executes bounty program instructions against the account
// store. Each instruction is validated, applied and paired with its token side
// effect inside a single database transaction, so it either fully applies or
// leaves no trace.
package engine

import (
	"context"
	"crypto/ed25519"
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bounty-server/pkg/bounty/data"
	"github.com/code-payments/bounty-server/pkg/bounty/runtime"
	"github.com/code-payments/bounty-server/pkg/metrics"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
	"github.com/code-payments/bounty-server/pkg/sync"
)

const (
	metricsStructName = "bounty.engine"

	instructionExecutedEventName = "BountyInstructionExecuted"
	instructionRejectedEventName = "BountyInstructionRejected"
)

type handler func(ctx context.Context, ix solana.Instruction) error

type Engine struct {
	log     *logrus.Entry
	conf    *conf
	data    data.DatabaseData
	runtime *runtime.Runtime
	clock   clockwork.Clock

	accountLocks *sync.StripedLock

	handlers map[bounty.InstructionType]handler
}

// New returns an engine for the bounty program and registers it with the
// runtime, so other programs can invoke it.
func New(data data.DatabaseData, rt *runtime.Runtime, clock clockwork.Clock, configProvider ConfigProvider) *Engine {
	conf := configProvider()

	lockStripes := conf.accountLockStripes.Get(context.Background())
	if lockStripes == 0 {
		lockStripes = defaultAccountLockStripes
	}

	e := &Engine{
		log:          logrus.StandardLogger().WithField("type", "bounty/engine"),
		conf:         conf,
		data:         data,
		runtime:      rt,
		clock:        clock,
		accountLocks: sync.NewStripedLock(uint(lockStripes)),
	}

	e.handlers = map[bounty.InstructionType]handler{
		bounty.InstructionTypeInitializeConfig:   e.initializeConfig,
		bounty.InstructionTypeUpdateRequiredMint: e.updateRequiredMint,
		bounty.InstructionTypeCreateBounty:       e.createBounty,
		bounty.InstructionTypeUpdateBounty:       e.updateBounty,
		bounty.InstructionTypeDeleteBounty:       e.deleteBounty,
		bounty.InstructionTypeBurnTokens:         e.burnTokens,
	}

	if feePolicy := FeePolicy(conf.feePolicy.Get(context.Background())); !feePolicy.IsValid() {
		e.log.WithField("fee_policy", feePolicy).Warn("unsupported fee policy, bounty creation will fail")
	}

	rt.Register(bounty.PROGRAM_ID, e)

	return e
}

// Execute runs a top level bounty program instruction atomically. Referenced
// accounts are locked for the duration of the call, writable ones exclusively.
// All account changes, including those made by invoked token and hook
// programs, are discarded if any step fails.
func (e *Engine) Execute(ctx context.Context, ix solana.Instruction) error {
	instructionType, _ := bounty.GetInstructionType(ix)

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Execute")
	tracer.AddAttribute("instruction", instructionType.String())
	defer tracer.End()

	log := e.log.WithFields(logrus.Fields{
		"method":      "Execute",
		"instruction": instructionType.String(),
	})

	var writeKeys, readKeys [][]byte
	for _, account := range ix.Accounts {
		if account.IsWritable {
			writeKeys = append(writeKeys, account.PublicKey)
		} else {
			readKeys = append(readKeys, account.PublicKey)
		}
	}
	lockStart := e.clock.Now()
	unlock := e.accountLocks.Lock(writeKeys, readKeys)
	defer unlock()
	metrics.RecordDuration(ctx, "bounty.engine.lock_wait", e.clock.Since(lockStart))

	err := e.data.ExecuteInTx(ctx, sql.LevelSerializable, func(ctx context.Context) error {
		return e.Process(ctx, ix)
	})
	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Info("instruction rejected")
		recordInstructionEvent(ctx, instructionRejectedEventName, instructionType, err)
		return err
	}

	log.Debug("instruction executed")
	recordInstructionEvent(ctx, instructionExecutedEventName, instructionType, nil)
	return nil
}

// Process implements runtime.Processor. It assumes the caller provides
// atomicity, which Execute does for top level instructions.
func (e *Engine) Process(ctx context.Context, ix solana.Instruction) error {
	instructionType, err := bounty.GetInstructionType(ix)
	if err == bounty.ErrInvalidProgram {
		return errors.Wrap(solana.ErrIncorrectProgram, "not a bounty instruction")
	} else if err != nil {
		return errors.Wrap(solana.ErrInvalidInstructionData, "unknown bounty instruction")
	}

	h, ok := e.handlers[instructionType]
	if !ok {
		return errors.Wrap(solana.ErrInvalidInstructionData, "unknown bounty instruction")
	}
	return h(ctx, ix)
}

func recordInstructionEvent(ctx context.Context, eventName string, instructionType bounty.InstructionType, err error) {
	kvs := map[string]interface{}{
		"instruction": instructionType.String(),
	}

	if err != nil {
		kvs["error"] = err.Error()

		var customErr solana.CustomError
		if errors.As(err, &customErr) {
			kvs["code"] = int(customErr)
		}
	}

	metrics.RecordEvent(ctx, eventName, kvs)
}

func encodeKey(key ed25519.PublicKey) string {
	return base58.Encode(key)
}
