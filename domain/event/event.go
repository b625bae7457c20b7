package event

import (
	"math/big"
	"time"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
)

type Type string

const (
	TypeAuctionCreated     Type = "AuctionCreated"
	TypeBidPlaced          Type = "BidPlaced"
	TypeAuctionSettled     Type = "AuctionSettled"
	TypeAuctionCanceled    Type = "AuctionCanceled"
	TypePlatformFeeUpdated Type = "PlatformFeeUpdated"
	TypeFundsWithdrawn     Type = "FundsWithdrawn"
)

// Event is one append-only marketplace occurrence. Fields irrelevant to a
// given type stay at their zero value. Events are written for external
// observers and never read back by the engine.
type Event struct {
	Type          Type             `json:"type" bson:"type"`
	AuctionId     domain.AuctionId `json:"auctionId,omitempty" bson:"auctionId,omitempty"`
	AssetContract domain.Address   `json:"assetContract,omitempty" bson:"assetContract,omitempty"`
	AssetId       domain.TokenId   `json:"assetId,omitempty" bson:"assetId,omitempty"`
	Seller        domain.Address   `json:"seller,omitempty" bson:"seller,omitempty"`
	Account       domain.Address   `json:"account,omitempty" bson:"account,omitempty"`
	Winner        domain.Address   `json:"winner,omitempty" bson:"winner,omitempty"`
	Amount        *big.Int         `json:"amount,omitempty" bson:"amount,omitempty"`
	ReservePrice  *big.Int         `json:"reservePrice,omitempty" bson:"reservePrice,omitempty"`
	EndTime       time.Time        `json:"endTime,omitempty" bson:"endTime,omitempty"`
	FeeBps        uint64           `json:"feeBps,omitempty" bson:"feeBps,omitempty"`
	CreatedAt     time.Time        `json:"createdAt" bson:"createdAt"`
}

// Recorder appends events for external observers. Recording failures must
// not fail the operation that emitted the event.
type Recorder interface {
	Record(c ctx.Ctx, e *Event) error
}
