package chain

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/xerrors"

	bCtx "github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
)

type ClientCfg struct {
	RpcUrl  string
	ChainId int64
	// PrivateKey signs the marketplace's custody transfers and payouts.
	PrivateKey string
}

// Client talks to the chain hosting the asset registry: read-only calls,
// contract transactions, and native value transfers.
type Client interface {
	Call(c bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error)
	Transact(c bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) error
	Send(c bCtx.Ctx, to common.Address, value *big.Int) error
	// Self is the address derived from the signing key.
	Self() common.Address
}

type clientImpl struct {
	client  *ethclient.Client
	chainId *big.Int
	key     *ecdsa.PrivateKey
	self    common.Address
}

func NewClient(c bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	client, err := ethclient.DialContext(c, cfg.RpcUrl)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"url": cfg.RpcUrl,
		}).Error("failed to dial rpc")
		return nil, err
	}
	key, err := crypto.HexToECDSA(cfg.PrivateKey)
	if err != nil {
		return nil, xerrors.Errorf("invalid private key: %w", err)
	}
	return &clientImpl{
		client:  client,
		chainId: big.NewInt(cfg.ChainId),
		key:     key,
		self:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (cl *clientImpl) Self() common.Address {
	return cl.self
}

func (cl *clientImpl) Call(c bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	data, err := _abi.Pack(method, params...)
	if err != nil {
		c.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	res, err := cl.client.CallContract(c, msg, nil)
	if err != nil {
		c.WithField("err", err).Error("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		c.WithField("err", err).Error("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}

func (cl *clientImpl) Transact(c bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) error {
	data, err := _abi.Pack(method, params...)
	if err != nil {
		c.WithFields(log.Fields{
			"method": method,
			"err":    err,
		}).Error("abi.Pack failed")
		return err
	}
	tx, err := cl.sendTx(c, &addr, nil, data)
	if err != nil {
		return err
	}
	return cl.waitMined(c, tx)
}

func (cl *clientImpl) Send(c bCtx.Ctx, to common.Address, value *big.Int) error {
	tx, err := cl.sendTx(c, &to, value, nil)
	if err != nil {
		return err
	}
	return cl.waitMined(c, tx)
}

func (cl *clientImpl) sendTx(c bCtx.Ctx, to *common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	nonce, err := cl.client.PendingNonceAt(c, cl.self)
	if err != nil {
		c.WithField("err", err).Error("client.PendingNonceAt failed")
		return nil, err
	}
	gasPrice, err := cl.client.SuggestGasPrice(c)
	if err != nil {
		c.WithField("err", err).Error("client.SuggestGasPrice failed")
		return nil, err
	}
	gasLimit, err := cl.client.EstimateGas(c, ethereum.CallMsg{
		From:  cl.self,
		To:    to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		c.WithField("err", err).Error("client.EstimateGas failed")
		return nil, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(cl.chainId), cl.key)
	if err != nil {
		c.WithField("err", err).Error("types.SignTx failed")
		return nil, err
	}
	if err := cl.client.SendTransaction(c, signed); err != nil {
		c.WithField("err", err).Error("client.SendTransaction failed")
		return nil, err
	}
	return signed, nil
}

func (cl *clientImpl) waitMined(c bCtx.Ctx, tx *types.Transaction) error {
	receipt, err := bind.WaitMined(c, cl.client, tx)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"tx":  tx.Hash(),
		}).Error("bind.WaitMined failed")
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return xerrors.Errorf("transaction %s reverted", tx.Hash())
	}
	return nil
}
