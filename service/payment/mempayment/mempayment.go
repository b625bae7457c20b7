package mempayment

import (
	"math/big"
	"sync"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/payment"
)

type Sent struct {
	To     domain.Address
	Amount *big.Int
}

// Sender records outbound native-value transfers instead of performing them.
// Tests use SendErr to simulate a recipient rejecting the payout and OnSend
// to stand in for recipient callbacks.
type Sender struct {
	mu    sync.Mutex
	sends []Sent

	SendErr error
	OnSend  func(c ctx.Ctx, to domain.Address, amount *big.Int)
}

func New() *Sender {
	return &Sender{}
}

func (s *Sender) Send(c ctx.Ctx, to domain.Address, amount *big.Int) error {
	s.mu.Lock()
	sendErr := s.SendErr
	hook := s.OnSend
	s.mu.Unlock()

	if sendErr != nil {
		return sendErr
	}
	if hook != nil {
		hook(c, to, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, Sent{To: to.ToLower(), Amount: domain.CopyAmount(amount)})
	return nil
}

// Sends returns a copy of everything sent so far.
func (s *Sender) Sends() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.sends))
	copy(out, s.sends)
	return out
}

var _ payment.Sender = (*Sender)(nil)
