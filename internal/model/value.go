package model

import (
	"fmt"
	"strings"
)

// Value is an amount of a single asset.
type Value struct {
	Asset  Unit   `json:"asset"`
	Amount Amount `json:"amount"`
}

// ParseValue parses "<integer><denom>", e.g. "1000000gm".
func ParseValue(input string) (Value, error) {
	input = strings.TrimSpace(input)
	split := 0
	for split < len(input) && input[split] >= '0' && input[split] <= '9' {
		split++
	}
	if split == 0 {
		return Value{}, fmt.Errorf("invalid value %q: missing amount", input)
	}
	amount, err := ParseAmount(input[:split])
	if err != nil {
		return Value{}, err
	}
	unit, err := NewUnit(input[split:])
	if err != nil {
		return Value{}, fmt.Errorf("invalid value %q: %w", input, err)
	}
	return Value{Asset: unit, Amount: amount}, nil
}

// AssetID returns the identifier of the value's asset.
func (v Value) AssetID() AssetID {
	return v.Asset.ID()
}

func (v Value) String() string {
	return v.Amount.String() + v.Asset.Denom
}
