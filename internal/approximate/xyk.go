package approximate

import (
	"go.uber.org/zap"
)

// Engine approximates a constant-product curve with a fixed number of
// bounded-range positions. An Engine holds no mutable state and may be shared.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// NewEngine builds an Engine; it fails only on an invalid Config.
func NewEngine(cfg Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Config returns the grid configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Approximate validates req, samples the grid and builds exactly
// cfg.Precision positions in sample order.
func (e *Engine) Approximate(req Request) (*Approximation, error) {
	if err := Validate(req, e.cfg); err != nil {
		return nil, err
	}

	samples := SampleFullRange(req.counterPrice(), e.cfg)
	for _, sample := range samples {
		e.logger.Debug("sampled tick",
			zap.Int("index", sample.Index),
			zap.Float64("alpha", sample.Alpha),
			zap.Int32("lower_tick", sample.LowerTick),
			zap.Int32("upper_tick", sample.UpperTick),
		)
	}

	approx, err := buildPositions(req, e.cfg, samples)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("approximation built",
		zap.String("pair", req.Pair.String()),
		zap.String("r1", approx.R1.String()),
		zap.String("r2", approx.R2.String()),
		zap.Float64("total_k", approx.TotalK()),
		zap.Float64("current_price", req.CurrentPrice),
		zap.String("residual_input", approx.Residual.Input.String()),
		zap.String("residual_counter", approx.Residual.Counter.String()),
	)
	return approx, nil
}

// Run approximates and, when debugPath is set, writes the diagnostic trace
// afterwards. A diagnostic failure is returned alongside the intact
// approximation.
func (e *Engine) Run(req Request, debugPath string) (*Approximation, error) {
	approx, err := e.Approximate(req)
	if err != nil {
		return nil, err
	}
	if debugPath == "" {
		return approx, nil
	}
	if err := WriteDiagnostics(debugPath, approx.SampleEntries()); err != nil {
		return approx, err
	}
	e.logger.Debug("diagnostics written", zap.String("path", debugPath), zap.Int("entries", len(approx.Samples)))
	return approx, nil
}
