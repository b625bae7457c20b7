package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/require"
)

func TestValidAmount(t *testing.T) {
	require.False(t, ValidAmount(nil))
	require.False(t, ValidAmount(big.NewInt(-1)))
	require.True(t, ValidAmount(big.NewInt(0)))
	require.True(t, ValidAmount(math.MaxBig256))
	require.False(t, ValidAmount(new(big.Int).Add(math.MaxBig256, big.NewInt(1))))
}

func TestCheckedAdd(t *testing.T) {
	sum, err := CheckedAdd(big.NewInt(1500), big.NewInt(500))
	require.NoError(t, err)
	require.Equal(t, int64(2000), sum.Int64())

	_, err = CheckedAdd(math.MaxBig256, big.NewInt(1))
	require.ErrorIs(t, err, ErrAmountOverflow)

	_, err = CheckedAdd(nil, big.NewInt(1))
	require.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestCheckedSub(t *testing.T) {
	diff, err := CheckedSub(big.NewInt(2000), big.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, int64(1900), diff.Int64())

	// never wraps below zero
	_, err = CheckedSub(big.NewInt(100), big.NewInt(101))
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestCheckedMul(t *testing.T) {
	product, err := CheckedMul(big.NewInt(2000), big.NewInt(500))
	require.NoError(t, err)
	require.Equal(t, int64(1000000), product.Int64())

	_, err = CheckedMul(math.MaxBig256, big.NewInt(2))
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestDivFloor(t *testing.T) {
	q, err := DivFloor(big.NewInt(1500), big.NewInt(20))
	require.NoError(t, err)
	require.Equal(t, int64(75), q.Int64())

	// integer floor division
	q, err = DivFloor(big.NewInt(1999), big.NewInt(20))
	require.NoError(t, err)
	require.Equal(t, int64(99), q.Int64())

	_, err = DivFloor(big.NewInt(1), big.NewInt(0))
	require.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestCopyAmount(t *testing.T) {
	orig := big.NewInt(42)
	cp := CopyAmount(orig)
	cp.SetInt64(7)
	require.Equal(t, int64(42), orig.Int64())
	require.Equal(t, int64(0), CopyAmount(nil).Int64())
}
