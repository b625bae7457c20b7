package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// Native value amounts are unsigned 256-bit wide, the range of the hosting
// chain. Every arithmetic helper here fails closed with ErrAmountOverflow or
// ErrAmountOutOfRange instead of wrapping.

var Big0 = big.NewInt(0)

// ValidAmount reports whether v is inside [0, 2^256-1].
func ValidAmount(v *big.Int) bool {
	if v == nil || v.Sign() < 0 {
		return false
	}
	return v.Cmp(math.MaxBig256) <= 0
}

// CheckedAdd returns a+b or fails if the sum leaves the 256-bit range.
func CheckedAdd(a, b *big.Int) (*big.Int, error) {
	if !ValidAmount(a) || !ValidAmount(b) {
		return nil, ErrAmountOutOfRange
	}
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(math.MaxBig256) > 0 {
		return nil, ErrAmountOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or fails if the difference would go negative.
func CheckedSub(a, b *big.Int) (*big.Int, error) {
	if !ValidAmount(a) || !ValidAmount(b) {
		return nil, ErrAmountOutOfRange
	}
	if a.Cmp(b) < 0 {
		return nil, ErrAmountOverflow
	}
	return new(big.Int).Sub(a, b), nil
}

// CheckedMul returns a*b or fails if the product leaves the 256-bit range.
func CheckedMul(a, b *big.Int) (*big.Int, error) {
	if !ValidAmount(a) || !ValidAmount(b) {
		return nil, ErrAmountOutOfRange
	}
	product := new(big.Int).Mul(a, b)
	if product.Cmp(math.MaxBig256) > 0 {
		return nil, ErrAmountOverflow
	}
	return product, nil
}

// DivFloor returns floor(a/b). Division by zero fails closed.
func DivFloor(a, b *big.Int) (*big.Int, error) {
	if !ValidAmount(a) || !ValidAmount(b) {
		return nil, ErrAmountOutOfRange
	}
	if b.Sign() == 0 {
		return nil, ErrAmountOutOfRange
	}
	return new(big.Int).Div(a, b), nil
}

// CopyAmount returns an owned copy of v, treating nil as zero.
func CopyAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
