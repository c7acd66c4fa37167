package model

// Payoff describes one position in input orientation: r1 is the input asset
// reserve, r2 the counter asset reserve, prices are counter per input.
type Payoff struct {
	LowerTick  int32   `json:"lower_tick"`
	UpperTick  int32   `json:"upper_tick"`
	LowerPrice float64 `json:"lower_price"`
	UpperPrice float64 `json:"upper_price"`
	R1         Amount  `json:"r1"`
	R2         Amount  `json:"r2"`
}

// SampleEntry is one record of the diagnostic trace.
type SampleEntry struct {
	Payoff       Payoff           `json:"payoff"`
	CurrentPrice float64          `json:"current_price"`
	Index        int              `json:"index"`
	Pair         DirectedUnitPair `json:"pair"`
	Alpha        float64          `json:"alpha"`
	TotalK       float64          `json:"total_k"`
}
