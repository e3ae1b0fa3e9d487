package domain

import (
	"math"
	"math/bits"

	dErrors "regionx/pkg/domain-errors"
)

// Balance is an amount of the native currency.
type Balance uint64

// ErrOverflow is returned when balance arithmetic leaves the representable range.
var ErrOverflow = dErrors.New(dErrors.CodeInvariantViolation, "overflow")

func (b Balance) CheckedAdd(o Balance) (Balance, error) {
	sum, carry := bits.Add64(uint64(b), uint64(o), 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return Balance(sum), nil
}

func (b Balance) CheckedSub(o Balance) (Balance, error) {
	if o > b {
		return 0, ErrOverflow
	}
	return b - o, nil
}

func (b Balance) CheckedMul(n uint64) (Balance, error) {
	hi, lo := bits.Mul64(uint64(b), n)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return Balance(lo), nil
}

func (b Balance) SaturatingAdd(o Balance) Balance {
	sum, err := b.CheckedAdd(o)
	if err != nil {
		return math.MaxUint64
	}
	return sum
}

func (b Balance) SaturatingSub(o Balance) Balance {
	if o > b {
		return 0
	}
	return b - o
}
