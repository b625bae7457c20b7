package market

import (
	"math/big"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/auction"
)

// State is the whole mutable ledger of the marketplace. Non-existence is a
// sentinel zero value: a missing auction id yields a record with a zero
// seller, a missing balance reads as zero.
type State struct {
	Initialized   bool
	Owner         domain.Address
	FeeBps        uint64
	NextAuctionId domain.AuctionId
	Auctions      map[domain.AuctionId]*auction.Auction
	Balances      map[domain.Address]*big.Int
	// Held is the total native value in marketplace custody. At every
	// observable point it equals the sum of leading bids on unsettled
	// auctions plus the sum of withdrawable balances.
	Held *big.Int
}

func NewState() *State {
	return &State{
		// ids are 1-based even before Initialize runs; id 0 would collide
		// with the sentinel zero value for missing records
		NextAuctionId: 1,
		Auctions:      map[domain.AuctionId]*auction.Auction{},
		Balances:      map[domain.Address]*big.Int{},
		Held:          new(big.Int),
	}
}

// Copy returns a deep copy sharing nothing with the receiver.
func (s *State) Copy() *State {
	cp := &State{
		Initialized:   s.Initialized,
		Owner:         s.Owner,
		FeeBps:        s.FeeBps,
		NextAuctionId: s.NextAuctionId,
		Auctions:      make(map[domain.AuctionId]*auction.Auction, len(s.Auctions)),
		Balances:      make(map[domain.Address]*big.Int, len(s.Balances)),
		Held:          domain.CopyAmount(s.Held),
	}
	for id, a := range s.Auctions {
		cp.Auctions[id] = a.Copy()
	}
	for addr, bal := range s.Balances {
		cp.Balances[addr] = domain.CopyAmount(bal)
	}
	return cp
}

// BalanceOf reads a balance, treating absent entries as zero.
func (s *State) BalanceOf(account domain.Address) *big.Int {
	if bal, ok := s.Balances[account.ToLower()]; ok {
		return domain.CopyAmount(bal)
	}
	return new(big.Int)
}

// Credit adds amount to an identity's withdrawable balance.
func (s *State) Credit(account domain.Address, amount *big.Int) error {
	bal, err := domain.CheckedAdd(s.BalanceOf(account), amount)
	if err != nil {
		return err
	}
	s.Balances[account.ToLower()] = bal
	return nil
}

// Tx is one all-or-nothing unit of work over the state. Mutations on the
// snapshot returned by State become visible only after Commit succeeds.
type Tx interface {
	State() *State
	Commit() error
	Rollback()
}

// Store is the injected transaction boundary around the ledger state.
type Store interface {
	Begin(c ctx.Ctx) Tx
	// View runs fn over a read-only snapshot of the committed state.
	View(c ctx.Ctx, fn func(*State) error) error
}

// ConfigUseCase covers platform bootstrapping and fee administration.
type ConfigUseCase interface {
	Initialize(c ctx.Ctx, caller domain.Address, feeBps uint64) error
	UpdateFee(c ctx.Ctx, caller domain.Address, feeBps uint64) error
	GetFeeBps(c ctx.Ctx) (uint64, error)
	GetOwner(c ctx.Ctx) (domain.Address, error)
	GetNextAuctionId(c ctx.Ctx) (domain.AuctionId, error)
}

// MaxFeeBps caps the platform fee at 10%.
const MaxFeeBps = 1000

// FeeDenominator converts basis points to a fraction.
var FeeDenominator = big.NewInt(10000)
