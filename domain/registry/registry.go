package registry

import (
	"math/big"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
)

// Registry is the consumed capability of an external ERC721-style ownership
// registry. Every call may fail for any reason (nonexistent asset, rejected
// receiver); callers must treat failures as recoverable.
type Registry interface {
	OwnerOf(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (domain.Address, error)
	GetApproved(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (domain.Address, error)
	IsApprovedForAll(c ctx.Ctx, contract domain.Address, owner, operator domain.Address) (bool, error)
	Transfer(c ctx.Ctx, contract domain.Address, from, to domain.Address, tokenId domain.TokenId) error
}

// Collection is the optional multi-collection extension some registries
// implement. Adapters that support it should also satisfy this interface;
// consumers probe with a type assertion and degrade gracefully.
type Collection interface {
	TokenCollection(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (*big.Int, error)
	GetCollection(c ctx.Ctx, contract domain.Address, collectionId *big.Int) (name, symbol string, creator domain.Address, err error)
}
