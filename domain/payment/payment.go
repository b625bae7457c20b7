package payment

import (
	"math/big"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
)

// Sender pushes native value out of marketplace custody. The recipient may
// reject the transfer; a failed send must leave no trace in the ledger.
type Sender interface {
	Send(c ctx.Ctx, to domain.Address, amount *big.Int) error
}
