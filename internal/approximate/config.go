package approximate

import (
	"fmt"
	"math"
)

const (
	// NumPoolsPrecision is the default number of positions per approximation.
	NumPoolsPrecision = 30
	// DefaultSpan places the outermost grid boundaries at price/Span and
	// price*Span.
	DefaultSpan = 16.0
	// MaxFeeBps caps the fee attached to every position (50%).
	MaxFeeBps uint32 = 5000
)

// Config controls the shape of the sampled grid.
type Config struct {
	Precision int
	Span      float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{Precision: NumPoolsPrecision, Span: DefaultSpan}
}

func (c Config) validate() error {
	if c.Precision < 2 {
		return fmt.Errorf("%w: precision must be at least 2, got %d", ErrInvalidConfig, c.Precision)
	}
	if math.IsNaN(c.Span) || math.IsInf(c.Span, 0) || c.Span <= 1 {
		return fmt.Errorf("%w: span must be a finite value above 1, got %v", ErrInvalidConfig, c.Span)
	}
	return nil
}

// below is the number of samples placed under the reference tick.
func (c Config) below() int {
	return c.Precision / 2
}

// above is the number of samples placed at or over the reference tick.
func (c Config) above() int {
	return c.Precision - c.below()
}

// stepTicks is the unclamped width of one range in ticks.
func (c Config) stepTicks() int64 {
	step := int64(math.Round(2 * math.Log(c.Span) / tickBase / float64(c.Precision)))
	if step < 1 {
		return 1
	}
	return step
}
