package approximate

// Sample is one grid cell of the approximation. Ticks and Alpha are in input
// orientation (counter asset per input asset).
type Sample struct {
	Index     int
	Alpha     float64
	LowerTick int32
	UpperTick int32
}

// SampleFullRange lays cfg.Precision adjacent ranges of equal tick width
// around price. The reference tick is the boundary between sample
// cfg.Precision/2-1 and cfg.Precision/2. The caller must have validated price
// against cfg.
func SampleFullRange(price float64, cfg Config) []Sample {
	t0 := int64(TickAtPrice(price))
	below := int64(cfg.below())
	above := int64(cfg.above())

	step := cfg.stepTicks()
	if room := (t0 - int64(MinTick)) / below; room < step {
		step = room
	}
	if room := (int64(MaxTick) - t0) / above; room < step {
		step = room
	}

	samples := make([]Sample, 0, cfg.Precision)
	for i := int64(0); i < int64(cfg.Precision); i++ {
		lower := t0 + (i-below)*step
		upper := lower + step
		samples = append(samples, Sample{
			Index:     int(i),
			Alpha:     PriceAtTick(float64(lower+upper) / 2),
			LowerTick: int32(lower),
			UpperTick: int32(upper),
		})
	}
	return samples
}

// fitsGrid reports whether at least one tick per range is available on both
// sides of the reference tick.
func fitsGrid(t0 float64, cfg Config) bool {
	if t0 < float64(MinTick) || t0 > float64(MaxTick) {
		return false
	}
	return t0-float64(MinTick) >= float64(cfg.below()) && float64(MaxTick)-t0 >= float64(cfg.above())
}
