package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// AmountBits is the width of an on-chain amount.
const AmountBits = 128

// ErrAmountOverflow is returned when a value does not fit in AmountBits.
var ErrAmountOverflow = fmt.Errorf("amount exceeds %d bits", AmountBits)

// Amount is a non-negative integer quantity of one asset.
type Amount struct {
	v uint256.Int
}

// NewAmount builds an Amount from a uint64.
func NewAmount(value uint64) Amount {
	var a Amount
	a.v.SetUint64(value)
	return a
}

// AmountFromUint256 checks the width of value and copies it.
func AmountFromUint256(value *uint256.Int) (Amount, error) {
	if value == nil {
		return Amount{}, nil
	}
	if value.BitLen() > AmountBits {
		return Amount{}, ErrAmountOverflow
	}
	var a Amount
	a.v.Set(value)
	return a, nil
}

// AmountFromBig converts a non-negative big.Int.
func AmountFromBig(value *big.Int) (Amount, error) {
	if value == nil {
		return Amount{}, nil
	}
	if value.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount: %s", value)
	}
	if value.BitLen() > AmountBits {
		return Amount{}, ErrAmountOverflow
	}
	var a Amount
	a.v.SetFromBig(value)
	return a, nil
}

// ParseAmount parses a base-10 integer amount.
func ParseAmount(input string) (Amount, error) {
	input = strings.TrimSpace(input)
	if input == "" || !isDigits(input) {
		return Amount{}, fmt.Errorf("invalid amount: %q", input)
	}
	parsed, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount: %q", input)
	}
	return AmountFromBig(parsed)
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Uint256 returns a copy of the underlying integer.
func (a Amount) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

// Float64 is lossy and meant for diagnostics only.
func (a Amount) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.v.ToBig()).Float64()
	return f
}

func (a Amount) Cmp(other Amount) int {
	return a.v.Cmp(&other.v)
}

// Add returns a+b, failing if the sum leaves the amount range.
func (a Amount) Add(b Amount) (Amount, error) {
	sum, overflow := new(uint256.Int).AddOverflow(&a.v, &b.v)
	if overflow {
		return Amount{}, ErrAmountOverflow
	}
	return AmountFromUint256(sum)
}

func (a Amount) String() string {
	return a.v.ToBig().String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	parsed, err := ParseAmount(text)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func isDigits(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
