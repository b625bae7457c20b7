package usecase

import (
	"github.com/benbjohnson/clock"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/event"
	"github.com/neonmarket/goapi/domain/market"
)

type ConfigUseCaseCfg struct {
	Store  market.Store
	Events event.Recorder
	Clock  clock.Clock
}

type impl struct {
	store  market.Store
	events event.Recorder
	clock  clock.Clock
}

func New(cfg *ConfigUseCaseCfg) market.ConfigUseCase {
	return &impl{
		store:  cfg.Store,
		events: cfg.Events,
		clock:  cfg.Clock,
	}
}

// Initialize is a one-time bootstrap: the caller becomes the platform owner
// and the auction counter starts at 1.
func (im *impl) Initialize(c ctx.Ctx, caller domain.Address, feeBps uint64) error {
	if feeBps > market.MaxFeeBps {
		return domain.ErrInvalidFeeBasisPoints
	}

	tx := im.store.Begin(c)
	st := tx.State()
	if st.Initialized {
		tx.Rollback()
		return domain.ErrAlreadyInitialized
	}
	st.Initialized = true
	st.Owner = caller.ToLower()
	st.FeeBps = feeBps
	st.NextAuctionId = 1

	if err := tx.Commit(); err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("failed to commit initialization")
		return err
	}
	return nil
}

func (im *impl) UpdateFee(c ctx.Ctx, caller domain.Address, feeBps uint64) error {
	tx := im.store.Begin(c)
	st := tx.State()
	if !st.Owner.Equals(caller) || st.Owner.IsZero() {
		tx.Rollback()
		return domain.ErrNotPlatformOwner
	}
	if feeBps > market.MaxFeeBps {
		tx.Rollback()
		return domain.ErrInvalidFeeBasisPoints
	}
	st.FeeBps = feeBps

	if err := tx.Commit(); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"feeBps": feeBps,
		}).Error("failed to commit fee update")
		return err
	}

	e := &event.Event{
		Type:      event.TypePlatformFeeUpdated,
		FeeBps:    feeBps,
		CreatedAt: im.clock.Now(),
	}
	if err := im.events.Record(c, e); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"event": e.Type,
		}).Warn("failed to record event")
	}
	return nil
}

func (im *impl) GetFeeBps(c ctx.Ctx) (uint64, error) {
	var feeBps uint64
	err := im.store.View(c, func(st *market.State) error {
		feeBps = st.FeeBps
		return nil
	})
	return feeBps, err
}

func (im *impl) GetOwner(c ctx.Ctx) (domain.Address, error) {
	var owner domain.Address
	err := im.store.View(c, func(st *market.State) error {
		owner = st.Owner
		return nil
	})
	return owner, err
}

func (im *impl) GetNextAuctionId(c ctx.Ctx) (domain.AuctionId, error) {
	var id domain.AuctionId
	err := im.store.View(c, func(st *market.State) error {
		id = st.NextAuctionId
		return nil
	})
	return id, err
}
