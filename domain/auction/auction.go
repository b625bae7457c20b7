package auction

import (
	"math/big"
	"time"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
)

// MaxDuration bounds how long an auction may run.
const MaxDuration = 30 * 24 * time.Hour

// Auction pairs an escrowed asset with a time-boxed bidding process.
// While Settled is false and a bidder exists, the asset is in marketplace
// custody and the leading bid's value is held by the marketplace.
type Auction struct {
	Id            domain.AuctionId `json:"id" bson:"id"`
	AssetContract domain.Address   `json:"assetContract" bson:"assetContract"`
	AssetId       domain.TokenId   `json:"assetId" bson:"assetId"`
	Seller        domain.Address   `json:"seller" bson:"seller"`
	ReservePrice  *big.Int         `json:"reservePrice" bson:"reservePrice"`
	CurrentBid    *big.Int         `json:"currentBid" bson:"currentBid"`
	CurrentBidder domain.Address   `json:"currentBidder" bson:"currentBidder"`
	EndTime       time.Time        `json:"endTime" bson:"endTime"`
	Settled       bool             `json:"settled" bson:"settled"`
}

// Copy returns an owned deep copy, so snapshots never alias live amounts.
func (a *Auction) Copy() *Auction {
	if a == nil {
		return nil
	}
	cp := *a
	cp.ReservePrice = domain.CopyAmount(a.ReservePrice)
	cp.CurrentBid = domain.CopyAmount(a.CurrentBid)
	return &cp
}

// HasBid reports whether any bid has ever been accepted.
func (a *Auction) HasBid() bool {
	return !a.CurrentBidder.IsZero()
}

// MinBid returns the smallest acceptable next bid: the reserve price before
// the first bid, afterwards the current bid plus a 5% increment rounded down.
func (a *Auction) MinBid() (*big.Int, error) {
	if a.CurrentBid == nil || a.CurrentBid.Sign() == 0 {
		return domain.CopyAmount(a.ReservePrice), nil
	}
	increment, err := domain.DivFloor(a.CurrentBid, big.NewInt(20))
	if err != nil {
		return nil, err
	}
	return domain.CheckedAdd(a.CurrentBid, increment)
}

// CollectionInfo describes the collection a token belongs to, when its
// contract implements the optional multi-collection interface.
type CollectionInfo struct {
	CollectionId *big.Int       `json:"collectionId"`
	Name         string         `json:"name"`
	Symbol       string         `json:"symbol"`
	Creator      domain.Address `json:"creator"`
}

// UseCase covers auction lifecycle: creation with escrow, cancellation,
// bidding with refund-by-credit, and at-most-once settlement.
type UseCase interface {
	CreateAuction(c ctx.Ctx, caller domain.Address, assetContract domain.Address, assetId domain.TokenId, reservePrice *big.Int, duration time.Duration) (domain.AuctionId, error)
	CancelAuction(c ctx.Ctx, caller domain.Address, id domain.AuctionId) error
	PlaceBid(c ctx.Ctx, caller domain.Address, id domain.AuctionId, amount *big.Int) error
	SettleAuction(c ctx.Ctx, id domain.AuctionId) error
	GetAuction(c ctx.Ctx, id domain.AuctionId) (*Auction, error)
	IsAuctionActive(c ctx.Ctx, id domain.AuctionId) (bool, error)
	GetTokenCollectionInfo(c ctx.Ctx, assetContract domain.Address, assetId domain.TokenId) (*CollectionInfo, error)
}
