package ledger

import (
	"math/big"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
)

// UseCase is the pull-payment ledger: funds credited by outbids and
// settlements sit in a per-identity balance until withdrawn on demand.
type UseCase interface {
	// Withdraw pays out the caller's entire balance. The balance is zeroed
	// before the outbound transfer and restored if the transfer fails.
	Withdraw(c ctx.Ctx, caller domain.Address) (*big.Int, error)
	GetBalance(c ctx.Ctx, account domain.Address) (*big.Int, error)
}
