package repository

import (
	"sync"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/market"
)

// stateStore keeps the authoritative ledger state in memory and hands out
// snapshot transactions. Begin deep-copies the committed state; Commit swaps
// the snapshot back in only if no other transaction committed in between, so
// a transaction that raced a reentrant call fails whole with ErrTxConflict
// instead of publishing partial state.
type stateStore struct {
	mu      sync.Mutex
	state   *market.State
	version uint64
}

func NewStateStore() market.Store {
	return &stateStore{state: market.NewState()}
}

type stateTx struct {
	store    *stateStore
	snapshot *market.State
	version  uint64
	done     bool
}

func (s *stateStore) Begin(c ctx.Ctx) market.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &stateTx{
		store:    s,
		snapshot: s.state.Copy(),
		version:  s.version,
	}
}

func (s *stateStore) View(c ctx.Ctx, fn func(*market.State) error) error {
	s.mu.Lock()
	snapshot := s.state.Copy()
	s.mu.Unlock()
	return fn(snapshot)
}

func (tx *stateTx) State() *market.State {
	return tx.snapshot
}

func (tx *stateTx) Commit() error {
	if tx.done {
		return domain.ErrTxConflict
	}
	tx.done = true

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if tx.store.version != tx.version {
		return domain.ErrTxConflict
	}
	tx.store.state = tx.snapshot
	tx.store.version++
	return nil
}

func (tx *stateTx) Rollback() {
	tx.done = true
}
