package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/neonmarket/goapi/base/abi"
	bCtx "github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/registry"
	"github.com/neonmarket/goapi/service/chain"
)

// Erc721 adapts an on-chain ERC721 registry to the registry capability.
type Erc721 struct {
	chainService chain.Client
}

func NewErc721(chainService chain.Client) *Erc721 {
	return &Erc721{chainService: chainService}
}

func (e *Erc721) OwnerOf(c bCtx.Ctx, contract domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	id, err := tokenId.ToBig()
	if err != nil {
		return domain.EmptyAddress, err
	}
	unpacked, err := e.chainService.Call(c, common.HexToAddress(string(contract)), baseabi.ERC721TokenABI, "ownerOf", id)
	if err != nil {
		return domain.EmptyAddress, err
	}
	return toAddress(unpacked[0]), nil
}

func (e *Erc721) GetApproved(c bCtx.Ctx, contract domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	id, err := tokenId.ToBig()
	if err != nil {
		return domain.EmptyAddress, err
	}
	unpacked, err := e.chainService.Call(c, common.HexToAddress(string(contract)), baseabi.ERC721TokenABI, "getApproved", id)
	if err != nil {
		return domain.EmptyAddress, err
	}
	return toAddress(unpacked[0]), nil
}

func (e *Erc721) IsApprovedForAll(c bCtx.Ctx, contract domain.Address, owner, operator domain.Address) (bool, error) {
	unpacked, err := e.chainService.Call(c, common.HexToAddress(string(contract)), baseabi.ERC721TokenABI, "isApprovedForAll",
		common.HexToAddress(string(owner)), common.HexToAddress(string(operator)))
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) Transfer(c bCtx.Ctx, contract domain.Address, from, to domain.Address, tokenId domain.TokenId) error {
	id, err := tokenId.ToBig()
	if err != nil {
		return err
	}
	err = e.chainService.Transact(c, common.HexToAddress(string(contract)), baseabi.ERC721TokenABI, "transferFrom",
		common.HexToAddress(string(from)), common.HexToAddress(string(to)), id)
	if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
			"tokenId":  tokenId,
		}).Error("failed to transferFrom")
		return err
	}
	return nil
}

func (e *Erc721) TokenCollection(c bCtx.Ctx, contract domain.Address, tokenId domain.TokenId) (*big.Int, error) {
	id, err := tokenId.ToBig()
	if err != nil {
		return nil, err
	}
	unpacked, err := e.chainService.Call(c, common.HexToAddress(string(contract)), baseabi.MultiCollectionABI, "tokenCollection", id)
	if err != nil {
		return nil, err
	}
	return unpacked[0].(*big.Int), nil
}

func (e *Erc721) GetCollection(c bCtx.Ctx, contract domain.Address, collectionId *big.Int) (string, string, domain.Address, error) {
	unpacked, err := e.chainService.Call(c, common.HexToAddress(string(contract)), baseabi.MultiCollectionABI, "getCollection", collectionId)
	if err != nil {
		return "", "", domain.EmptyAddress, err
	}
	return unpacked[0].(string), unpacked[1].(string), toAddress(unpacked[2]), nil
}

func toAddress(v interface{}) domain.Address {
	return domain.Address(v.(common.Address).String()).ToLower()
}

var _ registry.Registry = (*Erc721)(nil)
var _ registry.Collection = (*Erc721)(nil)
