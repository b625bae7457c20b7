package repository

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/market"
)

type stateStoreSuite struct {
	suite.Suite

	store market.Store
}

func TestStateStoreSuite(t *testing.T) {
	suite.Run(t, new(stateStoreSuite))
}

func (s *stateStoreSuite) SetupTest() {
	s.store = NewStateStore()
}

func (s *stateStoreSuite) TestCommitPublishes() {
	c := ctx.Background()

	tx := s.store.Begin(c)
	tx.State().FeeBps = 500
	s.NoError(tx.Commit())

	s.NoError(s.store.View(c, func(st *market.State) error {
		s.Equal(uint64(500), st.FeeBps)
		return nil
	}))
}

func (s *stateStoreSuite) TestRollbackDiscards() {
	c := ctx.Background()

	tx := s.store.Begin(c)
	tx.State().FeeBps = 500
	s.NoError(tx.State().Credit("0xaa", big.NewInt(100)))
	tx.Rollback()

	s.NoError(s.store.View(c, func(st *market.State) error {
		s.Equal(uint64(0), st.FeeBps)
		s.Equal(int64(0), st.BalanceOf("0xaa").Int64())
		return nil
	}))
}

func (s *stateStoreSuite) TestSnapshotIsolation() {
	c := ctx.Background()

	tx := s.store.Begin(c)
	s.NoError(tx.State().Credit("0xaa", big.NewInt(100)))

	// pending mutations are invisible until commit
	s.NoError(s.store.View(c, func(st *market.State) error {
		s.Equal(int64(0), st.BalanceOf("0xaa").Int64())
		return nil
	}))

	s.NoError(tx.Commit())
	s.NoError(s.store.View(c, func(st *market.State) error {
		s.Equal(int64(100), st.BalanceOf("0xaa").Int64())
		return nil
	}))
}

func (s *stateStoreSuite) TestConflictingCommitFailsWhole() {
	c := ctx.Background()

	tx1 := s.store.Begin(c)
	tx2 := s.store.Begin(c)
	s.NoError(tx1.State().Credit("0xaa", big.NewInt(1)))
	s.NoError(tx2.State().Credit("0xbb", big.NewInt(2)))

	s.NoError(tx1.Commit())
	s.ErrorIs(tx2.Commit(), domain.ErrTxConflict)

	// the losing transaction left no trace
	s.NoError(s.store.View(c, func(st *market.State) error {
		s.Equal(int64(1), st.BalanceOf("0xaa").Int64())
		s.Equal(int64(0), st.BalanceOf("0xbb").Int64())
		return nil
	}))
}

func (s *stateStoreSuite) TestDoubleCommitFails() {
	c := ctx.Background()

	tx := s.store.Begin(c)
	s.NoError(tx.Commit())
	s.ErrorIs(tx.Commit(), domain.ErrTxConflict)
}

func (s *stateStoreSuite) TestViewGetsCopy() {
	c := ctx.Background()

	tx := s.store.Begin(c)
	s.NoError(tx.State().Credit("0xaa", big.NewInt(100)))
	s.NoError(tx.Commit())

	s.NoError(s.store.View(c, func(st *market.State) error {
		st.Balances["0xaa"] = big.NewInt(999)
		return nil
	}))
	s.NoError(s.store.View(c, func(st *market.State) error {
		s.Equal(int64(100), st.BalanceOf("0xaa").Int64())
		return nil
	}))
}
