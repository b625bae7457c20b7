package memregistry

import (
	"math/big"
	"sync"

	"golang.org/x/xerrors"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/registry"
)

type tokenKey struct {
	contract domain.Address
	tokenId  domain.TokenId
}

type operatorKey struct {
	contract domain.Address
	owner    domain.Address
	operator domain.Address
}

type collection struct {
	id      *big.Int
	name    string
	symbol  string
	creator domain.Address
}

// Registry is an in-process ownership registry with ERC721 semantics:
// per-token approvals cleared on transfer, blanket operator approvals, and
// failures for nonexistent tokens. It backs tests and local development.
type Registry struct {
	mu          sync.Mutex
	owners      map[tokenKey]domain.Address
	approvals   map[tokenKey]domain.Address
	operators   map[operatorKey]bool
	collections map[tokenKey]collection

	// TransferErr, when set, makes every Transfer fail with it.
	TransferErr error
	// OnTransfer, when set, runs during Transfer before ownership moves,
	// standing in for receiver callbacks.
	OnTransfer func(c ctx.Ctx, from, to domain.Address)
}

func New() *Registry {
	return &Registry{
		owners:      map[tokenKey]domain.Address{},
		approvals:   map[tokenKey]domain.Address{},
		operators:   map[operatorKey]bool{},
		collections: map[tokenKey]collection{},
	}
}

// Mint assigns a fresh token to owner.
func (r *Registry) Mint(contract domain.Address, tokenId domain.TokenId, owner domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[tokenKey{contract.ToLower(), tokenId}] = owner.ToLower()
}

// Approve grants a per-token transfer approval.
func (r *Registry) Approve(contract domain.Address, tokenId domain.TokenId, to domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approvals[tokenKey{contract.ToLower(), tokenId}] = to.ToLower()
}

// SetApprovalForAll grants or revokes a blanket operator approval.
func (r *Registry) SetApprovalForAll(contract domain.Address, owner, operator domain.Address, approved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[operatorKey{contract.ToLower(), owner.ToLower(), operator.ToLower()}] = approved
}

// SetCollection attaches multi-collection metadata to a token.
func (r *Registry) SetCollection(contract domain.Address, tokenId domain.TokenId, id *big.Int, name, symbol string, creator domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[tokenKey{contract.ToLower(), tokenId}] = collection{domain.CopyAmount(id), name, symbol, creator.ToLower()}
}

func (r *Registry) OwnerOf(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[tokenKey{contract.ToLower(), tokenId}]
	if !ok {
		return domain.EmptyAddress, xerrors.Errorf("ownerOf: nonexistent token %s/%s", contract, tokenId)
	}
	return owner, nil
}

func (r *Registry) GetApproved(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[tokenKey{contract.ToLower(), tokenId}]; !ok {
		return domain.EmptyAddress, xerrors.Errorf("getApproved: nonexistent token %s/%s", contract, tokenId)
	}
	if approved, ok := r.approvals[tokenKey{contract.ToLower(), tokenId}]; ok {
		return approved, nil
	}
	return domain.EmptyAddress, nil
}

func (r *Registry) IsApprovedForAll(c ctx.Ctx, contract domain.Address, owner, operator domain.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.operators[operatorKey{contract.ToLower(), owner.ToLower(), operator.ToLower()}], nil
}

func (r *Registry) Transfer(c ctx.Ctx, contract domain.Address, from, to domain.Address, tokenId domain.TokenId) error {
	r.mu.Lock()
	transferErr := r.TransferErr
	hook := r.OnTransfer
	key := tokenKey{contract.ToLower(), tokenId}
	owner, ok := r.owners[key]
	r.mu.Unlock()

	if transferErr != nil {
		return transferErr
	}
	if !ok {
		return xerrors.Errorf("transfer: nonexistent token %s/%s", contract, tokenId)
	}
	if !owner.Equals(from) {
		return xerrors.Errorf("transfer: %s does not own token %s/%s", from, contract, tokenId)
	}
	if to.IsZero() {
		return xerrors.New("transfer: zero receiver")
	}

	if hook != nil {
		hook(c, from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[key] = to.ToLower()
	// approval does not survive a transfer
	delete(r.approvals, key)
	return nil
}

func (r *Registry) TokenCollection(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.collections[tokenKey{contract.ToLower(), tokenId}]
	if !ok {
		return nil, xerrors.Errorf("tokenCollection: not a multi-collection token %s/%s", contract, tokenId)
	}
	return domain.CopyAmount(col.id), nil
}

func (r *Registry) GetCollection(c ctx.Ctx, contract domain.Address, collectionId *big.Int) (string, string, domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, col := range r.collections {
		if key.contract.Equals(contract) && col.id.Cmp(collectionId) == 0 {
			return col.name, col.symbol, col.creator, nil
		}
	}
	return "", "", domain.EmptyAddress, xerrors.Errorf("getCollection: unknown collection %s", collectionId)
}

var _ registry.Registry = (*Registry)(nil)
var _ registry.Collection = (*Registry)(nil)
