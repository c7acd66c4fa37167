package model

// Reserves holds the two sides of a position, R1 for the pair's Start asset
// and R2 for its End asset.
type Reserves struct {
	R1 Amount `json:"r1"`
	R2 Amount `json:"r2"`
}

// Position is a bounded-range constant-product liquidity position. Ticks are
// in pair orientation: price(tick) = 1.0001^tick units of End per Start.
type Position struct {
	Pair      DirectedUnitPair `json:"pair"`
	LowerTick int32            `json:"lower_tick"`
	UpperTick int32            `json:"upper_tick"`
	Reserves  Reserves         `json:"reserves"`
	FeeBps    uint32           `json:"fee_bps"`
}

// ReserveOf returns the position's reserve of the given asset.
func (p Position) ReserveOf(id AssetID) Amount {
	switch id {
	case p.Pair.Start.ID():
		return p.Reserves.R1
	case p.Pair.End.ID():
		return p.Reserves.R2
	default:
		return Amount{}
	}
}

// PositionRecord is the flattened row written to storage sinks.
type PositionRecord struct {
	RunID     string `json:"run_id"`
	Index     int    `json:"index"`
	Start     string `json:"start"`
	End       string `json:"end"`
	LowerTick int32  `json:"lower_tick"`
	UpperTick int32  `json:"upper_tick"`
	Reserve1  string `json:"reserve1"`
	Reserve2  string `json:"reserve2"`
	FeeBps    uint32 `json:"fee_bps"`
	CreatedAt string `json:"created_at"`
}
