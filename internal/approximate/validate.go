package approximate

import (
	"fmt"
	"math"

	"liquidityShaper/internal/model"
)

// Request is a single approximation input. CurrentPrice is quoted as units of
// Pair.End per unit of Pair.Start.
type Request struct {
	Pair         model.DirectedUnitPair
	Input        model.Value
	CurrentPrice float64
	FeeBps       uint32
}

// inputIsStart reports whether the liquidity budget is denominated in the
// pair's Start asset.
func (r Request) inputIsStart() bool {
	return r.Input.AssetID() == r.Pair.Start.ID()
}

// counterPrice is the reference price in input orientation.
func (r Request) counterPrice() float64 {
	if r.inputIsStart() {
		return r.CurrentPrice
	}
	return 1 / r.CurrentPrice
}

// Validate checks a request before any sampling happens.
func Validate(req Request, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if !req.Pair.Contains(req.Input.AssetID()) {
		return fmt.Errorf("%w: %s not in %s", ErrAssetNotInPair, req.Input.Asset, req.Pair)
	}
	if req.Input.Amount.IsZero() {
		return ErrZeroAmount
	}
	if req.FeeBps > MaxFeeBps {
		return fmt.Errorf("%w: got %dbps", ErrFeeTooHigh, req.FeeBps)
	}
	if math.IsNaN(req.CurrentPrice) || math.IsInf(req.CurrentPrice, 0) {
		return fmt.Errorf("%w: %v", ErrNonFinitePrice, req.CurrentPrice)
	}
	if req.CurrentPrice <= 0 {
		return fmt.Errorf("%w: %v", ErrNonPositivePrice, req.CurrentPrice)
	}

	q := req.counterPrice()
	if math.IsInf(q, 0) || q <= 0 {
		return fmt.Errorf("%w: %v", ErrPriceOutOfRange, req.CurrentPrice)
	}
	if !fitsGrid(math.Floor(math.Log(q)/tickBase), cfg) {
		return fmt.Errorf("%w: %v", ErrPriceOutOfRange, req.CurrentPrice)
	}
	return nil
}
