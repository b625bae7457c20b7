package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	bCtx "github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/payment"
)

// NativeSender pays withdrawals out as native value transfers.
type NativeSender struct {
	client Client
}

func NewNativeSender(client Client) *NativeSender {
	return &NativeSender{client: client}
}

func (s *NativeSender) Send(c bCtx.Ctx, to domain.Address, amount *big.Int) error {
	if err := s.client.Send(c, common.HexToAddress(string(to)), amount); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"to":     to,
			"amount": amount,
		}).Error("failed to send native value")
		return err
	}
	return nil
}

var _ payment.Sender = (*NativeSender)(nil)
