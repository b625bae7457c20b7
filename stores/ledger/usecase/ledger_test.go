package usecase

import (
	"errors"
	"math/big"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/event"
	"github.com/neonmarket/goapi/domain/ledger"
	"github.com/neonmarket/goapi/domain/market"
	"github.com/neonmarket/goapi/service/payment/mempayment"
	event_repository "github.com/neonmarket/goapi/stores/event/repository"
	market_repository "github.com/neonmarket/goapi/stores/market/repository"
)

const account = domain.Address("0x0000000000000000000000000000000000000002")

type ledgerSuite struct {
	suite.Suite

	store  market.Store
	sender *mempayment.Sender
	events *event_repository.MemoryRecorder
	im     ledger.UseCase
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(ledgerSuite))
}

func (s *ledgerSuite) SetupTest() {
	s.store = market_repository.NewStateStore()
	s.sender = mempayment.New()
	s.events = event_repository.NewMemoryRecorder()
	s.im = New(&LedgerUseCaseCfg{
		Store:  s.store,
		Sender: s.sender,
		Events: s.events,
		Clock:  clock.NewMock(),
	})
}

// credit seeds a withdrawable balance the way an outbid refund would.
func (s *ledgerSuite) credit(acc domain.Address, amount int64) {
	tx := s.store.Begin(ctx.Background())
	st := tx.State()
	s.NoError(st.Credit(acc, big.NewInt(amount)))
	held, err := domain.CheckedAdd(st.Held, big.NewInt(amount))
	s.NoError(err)
	st.Held = held
	s.NoError(tx.Commit())
}

func (s *ledgerSuite) balanceOf(acc domain.Address) *big.Int {
	balance, err := s.im.GetBalance(ctx.Background(), acc)
	s.NoError(err)
	return balance
}

func (s *ledgerSuite) heldAmount() *big.Int {
	var held *big.Int
	s.NoError(s.store.View(ctx.Background(), func(st *market.State) error {
		held = domain.CopyAmount(st.Held)
		return nil
	}))
	return held
}

func (s *ledgerSuite) TestWithdrawNothing() {
	c := ctx.Background()

	_, err := s.im.Withdraw(c, account)
	s.ErrorIs(err, domain.ErrInsufficientBalance)
	s.Empty(s.sender.Sends())
}

func (s *ledgerSuite) TestWithdraw() {
	c := ctx.Background()
	s.credit(account, 1500)

	amount, err := s.im.Withdraw(c, account)
	s.NoError(err)
	s.Equal(int64(1500), amount.Int64())

	s.Equal(int64(0), s.balanceOf(account).Int64())
	s.Equal(int64(0), s.heldAmount().Int64())

	sends := s.sender.Sends()
	s.Len(sends, 1)
	s.Equal(account, sends[0].To)
	s.Equal(int64(1500), sends[0].Amount.Int64())

	withdrawn := s.events.EventsOfType(event.TypeFundsWithdrawn)
	s.Len(withdrawn, 1)
	s.Equal(int64(1500), withdrawn[0].Amount.Int64())

	// nothing left to pull a second time
	_, err = s.im.Withdraw(c, account)
	s.ErrorIs(err, domain.ErrInsufficientBalance)
}

func (s *ledgerSuite) TestWithdrawFailedSendRestoresBalance() {
	c := ctx.Background()
	s.credit(account, 1500)

	s.sender.SendErr = errors.New("receiver rejected")
	_, err := s.im.Withdraw(c, account)
	s.ErrorIs(err, domain.ErrTransferFailed)

	// the full amount is withdrawable again
	s.Equal(int64(1500), s.balanceOf(account).Int64())
	s.Equal(int64(1500), s.heldAmount().Int64())
	s.Empty(s.events.EventsOfType(event.TypeFundsWithdrawn))

	s.sender.SendErr = nil
	amount, err := s.im.Withdraw(c, account)
	s.NoError(err)
	s.Equal(int64(1500), amount.Int64())
}

func (s *ledgerSuite) TestReentrantWithdrawSeesEmptyBalance() {
	c := ctx.Background()
	s.credit(account, 1500)

	var reentrantErr error
	called := false
	s.sender.OnSend = func(hc ctx.Ctx, to domain.Address, amount *big.Int) {
		if called {
			return
		}
		called = true
		_, reentrantErr = s.im.Withdraw(hc, account)
	}

	amount, err := s.im.Withdraw(c, account)
	s.NoError(err)
	s.Equal(int64(1500), amount.Int64())
	s.True(called)

	// the balance was zeroed before the outbound send, so the nested
	// attempt had nothing to take
	s.ErrorIs(reentrantErr, domain.ErrInsufficientBalance)
	s.Len(s.sender.Sends(), 1)
}

func (s *ledgerSuite) TestGetBalance() {
	c := ctx.Background()

	balance, err := s.im.GetBalance(c, account)
	s.NoError(err)
	s.Equal(int64(0), balance.Int64())

	s.credit(account, 42)
	balance, err = s.im.GetBalance(c, account)
	s.NoError(err)
	s.Equal(int64(42), balance.Int64())
}
