package usecase

import (
	"math/big"

	"github.com/benbjohnson/clock"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/event"
	"github.com/neonmarket/goapi/domain/ledger"
	"github.com/neonmarket/goapi/domain/market"
	"github.com/neonmarket/goapi/domain/payment"
)

type LedgerUseCaseCfg struct {
	Store  market.Store
	Sender payment.Sender
	Events event.Recorder
	Clock  clock.Clock
}

type impl struct {
	store  market.Store
	sender payment.Sender
	events event.Recorder
	clock  clock.Clock
}

func New(cfg *LedgerUseCaseCfg) ledger.UseCase {
	return &impl{
		store:  cfg.Store,
		sender: cfg.Sender,
		events: cfg.Events,
		clock:  cfg.Clock,
	}
}

// Withdraw zeroes the caller's balance before the outbound transfer, so a
// reentrant withdrawal during the transfer observes an empty balance. A
// failed transfer restores the balance; from every other caller's view the
// withdrawal then never happened.
func (im *impl) Withdraw(c ctx.Ctx, caller domain.Address) (*big.Int, error) {
	tx := im.store.Begin(c)
	st := tx.State()

	balance := st.BalanceOf(caller)
	if balance.Sign() == 0 {
		tx.Rollback()
		return nil, domain.ErrInsufficientBalance
	}

	delete(st.Balances, caller.ToLower())
	held, err := domain.CheckedSub(st.Held, balance)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	st.Held = held

	if err := tx.Commit(); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"account": caller,
		}).Error("failed to commit withdrawal")
		return nil, err
	}

	if err := im.sender.Send(c, caller, balance); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"account": caller,
			"amount":  balance,
		}).Error("failed to send withdrawal, restoring balance")
		if restoreErr := im.restore(c, caller, balance); restoreErr != nil {
			c.WithFields(log.Fields{
				"err":     restoreErr,
				"account": caller,
				"amount":  balance,
			}).Error("failed to restore balance")
			return nil, restoreErr
		}
		return nil, domain.ErrTransferFailed
	}

	e := &event.Event{
		Type:      event.TypeFundsWithdrawn,
		Account:   caller.ToLower(),
		Amount:    domain.CopyAmount(balance),
		CreatedAt: im.clock.Now(),
	}
	if err := im.events.Record(c, e); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"event": e.Type,
		}).Warn("failed to record event")
	}
	return balance, nil
}

func (im *impl) restore(c ctx.Ctx, account domain.Address, amount *big.Int) error {
	tx := im.store.Begin(c)
	st := tx.State()
	if err := st.Credit(account, amount); err != nil {
		tx.Rollback()
		return err
	}
	held, err := domain.CheckedAdd(st.Held, amount)
	if err != nil {
		tx.Rollback()
		return err
	}
	st.Held = held
	return tx.Commit()
}

func (im *impl) GetBalance(c ctx.Ctx, account domain.Address) (*big.Int, error) {
	var balance *big.Int
	err := im.store.View(c, func(st *market.State) error {
		balance = st.BalanceOf(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}
