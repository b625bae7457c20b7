package usecase

import (
	"math/big"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/auction"
	"github.com/neonmarket/goapi/domain/event"
	"github.com/neonmarket/goapi/domain/market"
	"github.com/neonmarket/goapi/domain/registry"
)

type AuctionUseCaseCfg struct {
	Store    market.Store
	Registry registry.Registry
	Events   event.Recorder
	Clock    clock.Clock
	// Self is the marketplace's own identity, the escrow holder.
	Self domain.Address
}

type impl struct {
	store    market.Store
	registry registry.Registry
	events   event.Recorder
	clock    clock.Clock
	self     domain.Address
}

func New(cfg *AuctionUseCaseCfg) auction.UseCase {
	return &impl{
		store:    cfg.Store,
		registry: cfg.Registry,
		events:   cfg.Events,
		clock:    cfg.Clock,
		self:     cfg.Self,
	}
}

func (im *impl) CreateAuction(c ctx.Ctx, caller domain.Address, assetContract domain.Address, assetId domain.TokenId, reservePrice *big.Int, duration time.Duration) (domain.AuctionId, error) {
	if !domain.ValidAmount(reservePrice) || reservePrice.Sign() == 0 {
		return 0, domain.ErrInvalidReservePrice
	}
	if duration <= 0 || duration > auction.MaxDuration {
		return 0, domain.ErrInvalidDuration
	}

	owner, err := im.registry.OwnerOf(c, assetContract, assetId)
	if err != nil {
		c.WithFields(log.Fields{
			"err":           err,
			"assetContract": assetContract,
			"assetId":       assetId,
		}).Error("failed to registry.OwnerOf")
		return 0, domain.ErrAssetInvalid
	}
	if !owner.Equals(caller) {
		return 0, domain.ErrNotAssetOwner
	}

	approved, err := im.registry.GetApproved(c, assetContract, assetId)
	if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"assetId": assetId,
		}).Error("failed to registry.GetApproved")
		return 0, domain.ErrAssetInvalid
	}
	operator, err := im.registry.IsApprovedForAll(c, assetContract, caller, im.self)
	if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"assetId": assetId,
		}).Error("failed to registry.IsApprovedForAll")
		return 0, domain.ErrAssetInvalid
	}
	if !approved.Equals(im.self) && !operator {
		return 0, domain.ErrNotApprovedForTransfer
	}

	// escrow before opening the transaction: a failed transfer leaves no
	// record, and with no external call between Begin and Commit the commit
	// cannot lose the version race to a reentrant caller
	if err := im.registry.Transfer(c, assetContract, caller, im.self, assetId); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"assetId": assetId,
		}).Error("failed to escrow asset")
		return 0, domain.ErrTransferFailed
	}

	tx := im.store.Begin(c)
	st := tx.State()

	id := st.NextAuctionId
	endTime := im.clock.Now().Add(duration)
	st.Auctions[id] = &auction.Auction{
		Id:            id,
		AssetContract: assetContract.ToLower(),
		AssetId:       assetId,
		Seller:        caller.ToLower(),
		ReservePrice:  domain.CopyAmount(reservePrice),
		CurrentBid:    new(big.Int),
		CurrentBidder: domain.EmptyAddress,
		EndTime:       endTime,
		Settled:       false,
	}
	st.NextAuctionId = id + 1

	if err := tx.Commit(); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to commit auction creation, returning asset")
		if returnErr := im.registry.Transfer(c, assetContract, im.self, caller, assetId); returnErr != nil {
			c.WithFields(log.Fields{
				"err":     returnErr,
				"assetId": assetId,
			}).Error("failed to return asset after lost commit")
		}
		return 0, err
	}

	im.record(c, &event.Event{
		Type:          event.TypeAuctionCreated,
		AuctionId:     id,
		AssetContract: assetContract.ToLower(),
		AssetId:       assetId,
		Seller:        caller.ToLower(),
		ReservePrice:  domain.CopyAmount(reservePrice),
		EndTime:       endTime,
	})
	return id, nil
}

func (im *impl) CancelAuction(c ctx.Ctx, caller domain.Address, id domain.AuctionId) error {
	tx := im.store.Begin(c)
	st := tx.State()

	a := st.Auctions[id]
	if a == nil || a.Seller.IsZero() {
		tx.Rollback()
		return domain.ErrAuctionNotFound
	}
	if !a.Seller.Equals(caller) {
		tx.Rollback()
		return domain.ErrNotAuctionSeller
	}
	if a.Settled {
		tx.Rollback()
		return domain.ErrAuctionAlreadySettled
	}
	if a.HasBid() {
		tx.Rollback()
		return domain.ErrAuctionHasBids
	}

	// cancellation shares the settled flag with a successful sale; state
	// alone cannot tell the two apart, only the emitted event can. The flag
	// is committed before the asset return so a reentrant call during the
	// transfer observes a terminal auction, not an active bid-free one.
	a.Settled = true
	if err := tx.Commit(); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to commit cancellation")
		return err
	}

	if err := im.registry.Transfer(c, a.AssetContract, im.self, a.Seller, a.AssetId); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to return asset to seller, reopening auction")
		if reopenErr := im.reopen(c, id); reopenErr != nil {
			c.WithFields(log.Fields{
				"err":       reopenErr,
				"auctionId": id,
			}).Error("failed to reopen auction")
			return reopenErr
		}
		return domain.ErrTransferFailed
	}

	im.record(c, &event.Event{
		Type:      event.TypeAuctionCanceled,
		AuctionId: id,
		Seller:    a.Seller,
	})
	return nil
}

// reopen clears the terminal flag after a failed cancellation return, the
// compensating half of the commit-before-transfer pair.
func (im *impl) reopen(c ctx.Ctx, id domain.AuctionId) error {
	tx := im.store.Begin(c)
	st := tx.State()
	a := st.Auctions[id]
	if a == nil {
		tx.Rollback()
		return domain.ErrAuctionNotFound
	}
	a.Settled = false
	return tx.Commit()
}

func (im *impl) PlaceBid(c ctx.Ctx, caller domain.Address, id domain.AuctionId, amount *big.Int) error {
	if !domain.ValidAmount(amount) {
		return domain.ErrAmountOutOfRange
	}

	tx := im.store.Begin(c)
	st := tx.State()

	a := st.Auctions[id]
	if a == nil || a.Seller.IsZero() {
		tx.Rollback()
		return domain.ErrAuctionNotFound
	}
	if !im.clock.Now().Before(a.EndTime) || a.Settled {
		tx.Rollback()
		return domain.ErrAuctionNotActive
	}

	minBid, err := a.MinBid()
	if err != nil {
		tx.Rollback()
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to compute minimum bid")
		return err
	}
	if amount.Cmp(minBid) < 0 {
		tx.Rollback()
		return domain.ErrBidTooLow
	}

	// refund the outbid amount by credit, never by push transfer, so a
	// hostile previous bidder cannot block or re-enter the bid
	if a.HasBid() {
		if err := st.Credit(a.CurrentBidder, a.CurrentBid); err != nil {
			tx.Rollback()
			return err
		}
	}
	held, err := domain.CheckedAdd(st.Held, amount)
	if err != nil {
		tx.Rollback()
		return err
	}
	st.Held = held
	a.CurrentBid = domain.CopyAmount(amount)
	a.CurrentBidder = caller.ToLower()

	if err := tx.Commit(); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to commit bid")
		return err
	}

	im.record(c, &event.Event{
		Type:      event.TypeBidPlaced,
		AuctionId: id,
		Account:   caller.ToLower(),
		Amount:    domain.CopyAmount(amount),
	})
	return nil
}

// SettleAuction finalizes an ended auction exactly once. Callable by anyone.
func (im *impl) SettleAuction(c ctx.Ctx, id domain.AuctionId) error {
	tx := im.store.Begin(c)
	st := tx.State()

	a := st.Auctions[id]
	if a == nil || a.Seller.IsZero() {
		tx.Rollback()
		return domain.ErrAuctionNotFound
	}
	if im.clock.Now().Before(a.EndTime) {
		tx.Rollback()
		return domain.ErrAuctionNotEnded
	}
	if a.Settled {
		tx.Rollback()
		return domain.ErrAuctionAlreadySettled
	}

	a.Settled = true

	sold := a.HasBid() && a.CurrentBid.Cmp(a.ReservePrice) >= 0
	if sold {
		feeBps := new(big.Int).SetUint64(st.FeeBps)
		scaled, err := domain.CheckedMul(a.CurrentBid, feeBps)
		if err != nil {
			tx.Rollback()
			return err
		}
		platformFee, err := domain.DivFloor(scaled, market.FeeDenominator)
		if err != nil {
			tx.Rollback()
			return err
		}
		sellerAmount, err := domain.CheckedSub(a.CurrentBid, platformFee)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := st.Credit(a.Seller, sellerAmount); err != nil {
			tx.Rollback()
			return err
		}
		if err := st.Credit(st.Owner, platformFee); err != nil {
			tx.Rollback()
			return err
		}
	}

	// the settled flag and the credits are committed before any external
	// call, so a reentrant settle observes the terminal state
	if err := tx.Commit(); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to commit settlement")
		return err
	}

	// the settlement is observable in state from here on, so the event is
	// recorded even if the custody transfer below fails
	recipient := a.Seller
	if sold {
		recipient = a.CurrentBidder
		im.record(c, &event.Event{
			Type:      event.TypeAuctionSettled,
			AuctionId: id,
			Winner:    a.CurrentBidder,
			Amount:    domain.CopyAmount(a.CurrentBid),
		})
	} else {
		im.record(c, &event.Event{
			Type:      event.TypeAuctionSettled,
			AuctionId: id,
			Winner:    domain.EmptyAddress,
			Amount:    new(big.Int),
		})
	}

	// a failed custody transfer still leaves the auction terminal and the
	// credits standing
	if err := im.registry.Transfer(c, a.AssetContract, im.self, recipient, a.AssetId); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
			"recipient": recipient,
		}).Error("failed to transfer asset out of escrow")
		return domain.ErrTransferFailed
	}
	return nil
}

func (im *impl) GetAuction(c ctx.Ctx, id domain.AuctionId) (*auction.Auction, error) {
	var res *auction.Auction
	err := im.store.View(c, func(st *market.State) error {
		a := st.Auctions[id]
		if a == nil || a.Seller.IsZero() {
			return domain.ErrAuctionNotFound
		}
		res = a.Copy()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) IsAuctionActive(c ctx.Ctx, id domain.AuctionId) (bool, error) {
	active := false
	err := im.store.View(c, func(st *market.State) error {
		a := st.Auctions[id]
		if a == nil || a.Seller.IsZero() {
			return nil
		}
		active = im.clock.Now().Before(a.EndTime) && !a.Settled
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

// GetTokenCollectionInfo probes the optional multi-collection interface of
// the asset's registry and degrades to a default tuple when unsupported.
func (im *impl) GetTokenCollectionInfo(c ctx.Ctx, assetContract domain.Address, assetId domain.TokenId) (*auction.CollectionInfo, error) {
	unknown := &auction.CollectionInfo{
		CollectionId: new(big.Int),
		Name:         "Unknown Collection",
		Symbol:       "UNK",
		Creator:      domain.EmptyAddress,
	}

	col, ok := im.registry.(registry.Collection)
	if !ok {
		return unknown, nil
	}
	collectionId, err := col.TokenCollection(c, assetContract, assetId)
	if err != nil {
		return unknown, nil
	}
	name, symbol, creator, err := col.GetCollection(c, assetContract, collectionId)
	if err != nil {
		c.WithFields(log.Fields{
			"err":          err,
			"collectionId": collectionId,
		}).Error("failed to registry.GetCollection")
		return nil, domain.ErrAssetInvalid
	}
	return &auction.CollectionInfo{
		CollectionId: collectionId,
		Name:         name,
		Symbol:       symbol,
		Creator:      creator,
	}, nil
}

func (im *impl) record(c ctx.Ctx, e *event.Event) {
	e.CreatedAt = im.clock.Now()
	if err := im.events.Record(c, e); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"event": e.Type,
		}).Warn("failed to record event")
	}
}
