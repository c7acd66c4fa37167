package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AssetID identifies an asset by the keccak256 digest of its denom.
type AssetID = common.Hash

// Unit names an asset by its base denom.
type Unit struct {
	Denom string
}

// NewUnit trims and validates a denom.
func NewUnit(denom string) (Unit, error) {
	denom = strings.TrimSpace(denom)
	if denom == "" {
		return Unit{}, fmt.Errorf("empty denom")
	}
	if strings.ContainsAny(denom, ": \t") {
		return Unit{}, fmt.Errorf("invalid denom: %q", denom)
	}
	return Unit{Denom: denom}, nil
}

// ID returns the asset identifier for the unit.
func (u Unit) ID() AssetID {
	if common.IsHexAddress(u.Denom) {
		return crypto.Keccak256Hash(common.HexToAddress(u.Denom).Bytes())
	}
	return crypto.Keccak256Hash([]byte(u.Denom))
}

func (u Unit) String() string {
	return u.Denom
}

func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.Denom), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := NewUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// DirectedUnitPair orders two assets; prices are quoted as End per Start.
type DirectedUnitPair struct {
	Start Unit `json:"start"`
	End   Unit `json:"end"`
}

// NewDirectedUnitPair builds a pair of two distinct assets.
func NewDirectedUnitPair(start, end Unit) (DirectedUnitPair, error) {
	if start.ID() == end.ID() {
		return DirectedUnitPair{}, fmt.Errorf("pair assets must differ: %s", start)
	}
	return DirectedUnitPair{Start: start, End: end}, nil
}

// ParseDirectedUnitPair parses "start:end".
func ParseDirectedUnitPair(input string) (DirectedUnitPair, error) {
	parts := strings.Split(strings.TrimSpace(input), ":")
	if len(parts) != 2 {
		return DirectedUnitPair{}, fmt.Errorf("invalid pair %q: expected start:end", input)
	}
	start, err := NewUnit(parts[0])
	if err != nil {
		return DirectedUnitPair{}, fmt.Errorf("pair start: %w", err)
	}
	end, err := NewUnit(parts[1])
	if err != nil {
		return DirectedUnitPair{}, fmt.Errorf("pair end: %w", err)
	}
	return NewDirectedUnitPair(start, end)
}

// Contains reports whether the asset is either side of the pair.
func (p DirectedUnitPair) Contains(id AssetID) bool {
	return id == p.Start.ID() || id == p.End.ID()
}

// Flip returns the pair with Start and End swapped.
func (p DirectedUnitPair) Flip() DirectedUnitPair {
	return DirectedUnitPair{Start: p.End, End: p.Start}
}

func (p DirectedUnitPair) String() string {
	return p.Start.Denom + ":" + p.End.Denom
}
