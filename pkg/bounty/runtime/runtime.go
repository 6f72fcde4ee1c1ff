package runtime

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bounty-server/pkg/bounty/data"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/token"
)

// MaxInvokeDepth bounds nested program invocations, matching the Solana
// runtime's CPI depth limit.
const MaxInvokeDepth = 4

var ErrCallDepthExceeded = errors.New("call depth exceeded")

type invokeDepthContextKey struct{}

// Processor executes instructions addressed to a single program
type Processor interface {
	Process(ctx context.Context, ix solana.Instruction) error
}

// ProcessorFunc adapts a function to a Processor
type ProcessorFunc func(ctx context.Context, ix solana.Instruction) error

func (f ProcessorFunc) Process(ctx context.Context, ix solana.Instruction) error {
	return f(ctx, ix)
}

// Runtime is an in-process host for the programs the bounty program calls
// into. All account state lives in the data provider, so changes made by
// processors are committed or discarded with the caller's transaction.
//
// Signer flags on invoked instructions are trusted. Callers are responsible
// for only granting privileges they hold.
type Runtime struct {
	log  *logrus.Entry
	data data.DatabaseData

	processorsMu sync.RWMutex
	processors   map[string]Processor
}

// New returns a runtime with the Token-2022 and associated token account
// programs registered.
func New(data data.DatabaseData) *Runtime {
	r := &Runtime{
		log:        logrus.StandardLogger().WithField("type", "bounty/runtime"),
		data:       data,
		processors: make(map[string]Processor),
	}

	r.Register(token.ProgramKey, ProcessorFunc(r.processToken))
	r.Register(token.AssociatedTokenAccountProgramKey, ProcessorFunc(r.processAssociatedTokenAccount))

	return r
}

// Register installs the processor for a program, replacing any existing one
func (r *Runtime) Register(program ed25519.PublicKey, p Processor) {
	r.processorsMu.Lock()
	r.processors[string(program)] = p
	r.processorsMu.Unlock()
}

// Processor returns the processor installed for a program
func (r *Runtime) Processor(program ed25519.PublicKey) (Processor, bool) {
	r.processorsMu.RLock()
	defer r.processorsMu.RUnlock()

	p, ok := r.processors[string(program)]
	return p, ok
}

// Invoke executes an instruction against its program's processor
func (r *Runtime) Invoke(ctx context.Context, ix solana.Instruction) error {
	p, ok := r.Processor(ix.Program)
	if !ok {
		return errors.Wrapf(solana.ErrIncorrectProgram, "no processor for program %s", base58.Encode(ix.Program))
	}

	depth, _ := ctx.Value(invokeDepthContextKey{}).(int)
	if depth >= MaxInvokeDepth {
		return ErrCallDepthExceeded
	}
	ctx = context.WithValue(ctx, invokeDepthContextKey{}, depth+1)

	err := p.Process(ctx, ix)
	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"program": base58.Encode(ix.Program),
			"depth":   depth,
		}).Debug("instruction failed")
	}
	return err
}
