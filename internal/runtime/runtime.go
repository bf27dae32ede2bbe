// Package runtime implements the reactive fixpoint loop: a Transaction
// lands in the Store, the Runtime forms a worklist of Blocks subscribed to
// what changed, executes their plans, stages the emitted Changes, and
// applies them as an internal Transaction, repeating until quiescent or
// until a configurable iteration guard fires. Grounded on the
// Database/Runtime wiring in original_source/src/bin/main.rs
// (`runtime.register_block(block, &store)`, `runtime.process_transaction(txn)`)
// and, for concurrency shape, a construction-time options struct pattern
// (`RegisterVM` in internal/vm).
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/weftdb/weft/internal/block"
	"github.com/weftdb/weft/internal/change"
	"github.com/weftdb/weft/internal/errorsx"
	"github.com/weftdb/weft/internal/store"
	"github.com/weftdb/weft/internal/tableid"
	"github.com/weftdb/weft/internal/wlog"
)

// DefaultMaxIterations bounds the reactive fixpoint loop when Options
// doesn't set one, the default divergence guard.
const DefaultMaxIterations = 1024

// Options configures a Runtime at construction time; there is no config
// file or environment parsing.
type Options struct {
	// MaxIterations bounds the fixpoint loop; 0 means DefaultMaxIterations.
	MaxIterations int
	// Parallel allows a wave's blocks to execute concurrently when their
	// output sets are proven disjoint.
	Parallel bool
}

// WaveReport summarizes one Submit call: how many waves it took to reach
// quiescence (or diverge), every structured error collected along the way,
// and the touched columns of any watched tables.
type WaveReport struct {
	TransactionID uuid.UUID
	Waves         int
	Changed       store.ChangedSet
	Errors        []*errorsx.Error
	Diverged      bool
	Watched       map[tableid.ID][]int
}

// Runtime holds the Block registry and two indices: registration order
// (for worklist ordering) and each block's derived input set (consulted
// directly rather than via a separate reverse index, since blocks are few
// and Inputs() is a small map).
type Runtime struct {
	mu       sync.Mutex
	store    *store.Store
	opts     Options
	blocks   map[int]*block.Block
	order    []int
	watchers map[tableid.ID]bool
}

// New returns a Runtime bound to st. Options{} yields DefaultMaxIterations
// and sequential wave execution.
func New(st *store.Store, opts Options) *Runtime {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &Runtime{
		store:    st,
		opts:     opts,
		blocks:   make(map[int]*block.Block),
		watchers: make(map[tableid.ID]bool),
	}
}

// RegisterBlock validates b's plan against the Store, derives its
// input/output sets, and adds it to the registry in registration order.
// Blocks are immutable once registered.
func (rt *Runtime) RegisterBlock(b *block.Block) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, exists := rt.blocks[b.ID]; exists {
		return fmt.Errorf("runtime: block %d already registered", b.ID)
	}
	if err := b.Validate(rt.store); err != nil {
		return err
	}
	b.DeriveIO()
	rt.blocks[b.ID] = b
	rt.order = append(rt.order, b.ID)
	return nil
}

// Watch marks table t's column changes as worth surfacing in WaveReport.
func (rt *Runtime) Watch(t tableid.ID) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.watchers[t] = true
}

// Submit applies txn to the Store, then runs the fixpoint loop until the
// ChangedSet is empty or the iteration guard fires.
func (rt *Runtime) Submit(txn change.Transaction) (*WaveReport, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	logger := wlog.Component("runtime")
	txnID := uuid.New()
	report := &WaveReport{TransactionID: txnID}

	changed, errs := rt.store.Apply(txn)
	report.Errors = append(report.Errors, errs.Errs()...)

	waves := 0
	for !changed.Empty() {
		waves++
		if waves > rt.opts.MaxIterations {
			logger.Warn().
				Str("txn", txnID.String()).
				Str("guard", humanize.Comma(int64(rt.opts.MaxIterations))).
				Msg("reactive fixpoint exceeded iteration guard")
			report.Diverged = true
			report.Errors = append(report.Errors, errorsx.New(errorsx.Divergence,
				"fixpoint exceeded %s iterations", humanize.Comma(int64(rt.opts.MaxIterations))))
			waves--
			break
		}

		worklist := rt.buildWorklist(changed)
		if len(worklist) == 0 {
			break
		}

		logger.Debug().
			Str("txn", txnID.String()).
			Int("wave", waves).
			Int("blocks", len(worklist)).
			Msg("executing wave")

		staged, waveErrs := rt.executeWave(worklist, changed)
		report.Errors = append(report.Errors, waveErrs...)

		newChanged, applyErrs := rt.store.Apply(change.FromChangeset(staged))
		report.Errors = append(report.Errors, applyErrs.Errs()...)
		changed = newChanged
	}

	report.Waves = waves
	report.Changed = changed
	report.Watched = rt.watchedColumns(changed)
	return report, nil
}

// buildWorklist returns, in registration order, every block that scan-reads
// at least one (table,col) pair in changed.
func (rt *Runtime) buildWorklist(changed store.ChangedSet) []*block.Block {
	var list []*block.Block
	for _, id := range rt.order {
		b := rt.blocks[id]
		for ref := range b.Inputs() {
			if changed.Has(ref.Table, ref.Col) {
				list = append(list, b)
				break
			}
		}
	}
	return list
}

// executeWave runs every block in worklist once, collecting their emitted
// Changes and structured errors. When Options.Parallel is set and the
// worklist's blocks are proven to have pairwise-disjoint output sets, they
// run concurrently via errgroup; otherwise execution is sequential in
// registration order, which is always a correct fallback.
func (rt *Runtime) executeWave(worklist []*block.Block, changed store.ChangedSet) ([]change.Change, []*errorsx.Error) {
	if rt.opts.Parallel && len(worklist) > 1 && disjointOutputs(worklist) {
		return rt.executeWaveParallel(worklist, changed)
	}
	return rt.executeWaveSequential(worklist, changed)
}

func (rt *Runtime) executeWaveSequential(worklist []*block.Block, changed store.ChangedSet) ([]change.Change, []*errorsx.Error) {
	var staged []change.Change
	var errs []*errorsx.Error
	for _, b := range worklist {
		emitted, blockErrs := b.Execute(rt.store, changed)
		staged = append(staged, emitted...)
		errs = append(errs, blockErrs.Errs()...)
	}
	return staged, errs
}

func (rt *Runtime) executeWaveParallel(worklist []*block.Block, changed store.ChangedSet) ([]change.Change, []*errorsx.Error) {
	results := make([][]change.Change, len(worklist))
	errSlices := make([][]*errorsx.Error, len(worklist))

	g, _ := errgroup.WithContext(context.Background())
	for i, b := range worklist {
		i, b := i, b
		g.Go(func() error {
			emitted, blockErrs := b.Execute(rt.store, changed)
			results[i] = emitted
			errSlices[i] = blockErrs.Errs()
			return nil
		})
	}
	_ = g.Wait() // block.Execute never returns an error from errgroup's perspective

	var staged []change.Change
	var errs []*errorsx.Error
	for i := range worklist {
		staged = append(staged, results[i]...)
		errs = append(errs, errSlices[i]...)
	}
	return staged, errs
}

// disjointOutputs reports whether every block in worklist writes to a
// (table,col) set that shares nothing with any other block's output set.
func disjointOutputs(worklist []*block.Block) bool {
	seen := make(map[store.CellRef]bool)
	for _, b := range worklist {
		for ref := range b.Outputs() {
			if seen[ref] {
				return false
			}
			seen[ref] = true
		}
	}
	return true
}

func (rt *Runtime) watchedColumns(changed store.ChangedSet) map[tableid.ID][]int {
	out := make(map[tableid.ID][]int)
	for _, ref := range changed.Refs() {
		if !rt.watchers[ref.Table] {
			continue
		}
		out[ref.Table] = append(out[ref.Table], ref.Col)
	}
	for t := range out {
		slices.Sort(out[t])
	}
	return out
}
