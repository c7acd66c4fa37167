package approximate

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"liquidityShaper/internal/model"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return engine
}

func sumReserves(t *testing.T, positions []model.Position, id model.AssetID) model.Amount {
	t.Helper()
	var total model.Amount
	for _, pos := range positions {
		var err error
		total, err = total.Add(pos.ReserveOf(id))
		if err != nil {
			t.Fatalf("sum reserves: %v", err)
		}
	}
	return total
}

func TestApproximateConstantProduct(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	pair := testPair(t)
	req := Request{
		Pair:         pair,
		Input:        testValue(t, "1000000gm"),
		CurrentPrice: 2.0,
		FeeBps:       30,
	}

	approx, err := engine.Approximate(req)
	if err != nil {
		t.Fatalf("approximate: %v", err)
	}

	if len(approx.Positions) != NumPoolsPrecision {
		t.Fatalf("expected %d positions, got %d", NumPoolsPrecision, len(approx.Positions))
	}

	below := NumPoolsPrecision / 2
	for i, pos := range approx.Positions {
		if pos.FeeBps != 30 {
			t.Fatalf("position %d fee %d", i, pos.FeeBps)
		}
		if pos.LowerTick >= pos.UpperTick {
			t.Fatalf("position %d has empty range", i)
		}
		if i > 0 && pos.LowerTick != approx.Positions[i-1].UpperTick {
			t.Fatalf("position %d not adjacent to %d", i, i-1)
		}
		if i < below && !pos.Reserves.R1.IsZero() {
			t.Fatalf("position %d below price holds input asset", i)
		}
		if i >= below && !pos.Reserves.R2.IsZero() {
			t.Fatalf("position %d above price holds counter asset", i)
		}
	}

	if got := sumReserves(t, approx.Positions, pair.Start.ID()); got.Cmp(model.NewAmount(1_000_000)) != 0 {
		t.Fatalf("start reserves sum %s, want 1000000", got)
	}
	if got := sumReserves(t, approx.Positions, pair.End.ID()); got.Cmp(model.NewAmount(2_000_000)) != 0 {
		t.Fatalf("end reserves sum %s, want 2000000", got)
	}
	if approx.TotalK() != 2e12 {
		t.Fatalf("total k %v, want 2e12", approx.TotalK())
	}

	limit := model.NewAmount(uint64(below))
	if approx.Residual.Input.Cmp(limit) >= 0 || approx.Residual.Counter.Cmp(limit) >= 0 {
		t.Fatalf("residual too large: %+v", approx.Residual)
	}
}

func TestApproximateEndAssetInput(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	pair := testPair(t)
	req := Request{
		Pair:         pair,
		Input:        testValue(t, "1000000gn"),
		CurrentPrice: 2.0,
		FeeBps:       5000,
	}

	approx, err := engine.Approximate(req)
	if err != nil {
		t.Fatalf("approximate: %v", err)
	}
	if len(approx.Positions) != NumPoolsPrecision {
		t.Fatalf("expected %d positions, got %d", NumPoolsPrecision, len(approx.Positions))
	}

	if got := sumReserves(t, approx.Positions, pair.End.ID()); got.Cmp(model.NewAmount(1_000_000)) != 0 {
		t.Fatalf("input reserves sum %s", got)
	}
	if got := sumReserves(t, approx.Positions, pair.Start.ID()); got.Cmp(model.NewAmount(500_000)) != 0 {
		t.Fatalf("counter reserves sum %s", got)
	}

	for i, pos := range approx.Positions {
		if pos.LowerTick >= pos.UpperTick {
			t.Fatalf("position %d has empty range", i)
		}
		if i > 0 && pos.UpperTick != approx.Positions[i-1].LowerTick {
			t.Fatalf("position %d not adjacent to %d in pair orientation", i, i-1)
		}
	}
}

func TestApproximateAlternatePrecision(t *testing.T) {
	for _, precision := range []int{2, 5, 64} {
		engine := newTestEngine(t, Config{Precision: precision, Span: 4})
		req := Request{
			Pair:         testPair(t),
			Input:        testValue(t, "987654321gm"),
			CurrentPrice: 0.0137,
			FeeBps:       1,
		}
		approx, err := engine.Approximate(req)
		if err != nil {
			t.Fatalf("precision %d: %v", precision, err)
		}
		if len(approx.Positions) != precision {
			t.Fatalf("precision %d: got %d positions", precision, len(approx.Positions))
		}
		if got := sumReserves(t, approx.Positions, req.Pair.Start.ID()); got.Cmp(req.Input.Amount) != 0 {
			t.Fatalf("precision %d: input sum %s", precision, got)
		}
		if got := sumReserves(t, approx.Positions, req.Pair.End.ID()); got.Cmp(approx.R2) != 0 {
			t.Fatalf("precision %d: counter sum %s want %s", precision, got, approx.R2)
		}
	}
}

func TestApproximateIdempotent(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	req := Request{
		Pair:         testPair(t),
		Input:        testValue(t, "31337gm"),
		CurrentPrice: 3.14159,
		FeeBps:       25,
	}
	dir := t.TempDir()

	first, err := engine.Run(req, filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := engine.Run(req, filepath.Join(dir, "b.json"))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, err := json.Marshal(first.Positions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second.Positions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("positions differ between runs")
	}

	traceA, err := os.ReadFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	traceB, err := os.ReadFile(filepath.Join(dir, "b.json"))
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if string(traceA) != string(traceB) {
		t.Fatalf("diagnostic traces differ between runs")
	}
}

func TestRunFeeTooHighWritesNoTrace(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	path := filepath.Join(t.TempDir(), "trace.json")

	_, err := engine.Run(Request{
		Pair:         testPair(t),
		Input:        testValue(t, "1000000gm"),
		CurrentPrice: 2.0,
		FeeBps:       5001,
	}, path)
	if !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("expected ErrFeeTooHigh, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("trace file should not exist, stat err: %v", err)
	}
}

func TestRunWritesTrace(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	path := filepath.Join(t.TempDir(), "nested", "trace.json")

	approx, err := engine.Run(Request{
		Pair:         testPair(t),
		Input:        testValue(t, "1000000gm"),
		CurrentPrice: 2.0,
		FeeBps:       30,
	}, path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parse trace: %v", err)
	}
	if len(entries) != len(approx.Positions) {
		t.Fatalf("expected %d entries, got %d", len(approx.Positions), len(entries))
	}

	fields := []string{"payoff", "current_price", "index", "pair", "alpha", "total_k"}
	for i, entry := range entries {
		if len(entry) != len(fields) {
			t.Fatalf("entry %d has %d fields", i, len(entry))
		}
		for _, field := range fields {
			if _, ok := entry[field]; !ok {
				t.Fatalf("entry %d missing %s", i, field)
			}
		}
		var index int
		if err := json.Unmarshal(entry["index"], &index); err != nil || index != i {
			t.Fatalf("entry %d has index %s", i, entry["index"])
		}
	}
}

func TestRunDiagnosticFailureKeepsPositions(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	approx, err := engine.Run(Request{
		Pair:         testPair(t),
		Input:        testValue(t, "1000000gm"),
		CurrentPrice: 2.0,
		FeeBps:       30,
	}, filepath.Join(blocker, "trace.json"))

	var diagErr *DiagnosticError
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected DiagnosticError, got %v", err)
	}
	if diagErr.Stage != "create" {
		t.Fatalf("unexpected stage %q", diagErr.Stage)
	}
	if approx == nil || len(approx.Positions) != NumPoolsPrecision {
		t.Fatalf("approximation should survive a diagnostic failure")
	}
}

func TestApproximateCounterOverflow(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	amount, err := model.AmountFromBig(new(big.Int).Lsh(big.NewInt(1), 127))
	if err != nil {
		t.Fatalf("amount: %v", err)
	}

	_, err = engine.Approximate(Request{
		Pair:         testPair(t),
		Input:        model.Value{Asset: model.Unit{Denom: "gm"}, Amount: amount},
		CurrentPrice: 4.0,
	})

	var arithErr *ArithmeticError
	if !errors.As(err, &arithErr) {
		t.Fatalf("expected ArithmeticError, got %v", err)
	}
	if !errors.Is(err, ErrReserveOverflow) {
		t.Fatalf("expected ErrReserveOverflow, got %v", err)
	}
	if arithErr.Index != NoSample {
		t.Fatalf("counter total overflow should not name a sample, got %d", arithErr.Index)
	}
	if got := err.Error(); got != "counter reserve total: reserve overflow" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAllocateLargestRemainder(t *testing.T) {
	cases := []struct {
		total   uint64
		weights []uint64
		want    []uint64
		residue uint64
	}{
		{total: 10, weights: []uint64{1, 1, 1}, want: []uint64{4, 3, 3}, residue: 1},
		{total: 10, weights: []uint64{1, 2, 1}, want: []uint64{3, 5, 2}, residue: 1},
		{total: 7, weights: []uint64{1, 3, 3}, want: []uint64{1, 3, 3}, residue: 0},
		{total: 2, weights: []uint64{5, 1, 9}, want: []uint64{1, 0, 1}, residue: 1},
	}

	for _, tc := range cases {
		weights := make([]*uint256.Int, 0, len(tc.weights))
		for _, w := range tc.weights {
			weights = append(weights, uint256.NewInt(w))
		}
		got, residual, err := allocate(uint256.NewInt(tc.total), weights, 0)
		if err != nil {
			t.Fatalf("allocate %v: %v", tc.weights, err)
		}
		for i := range got {
			if got[i].Cmp(model.NewAmount(tc.want[i])) != 0 {
				t.Fatalf("allocate %d over %v: got %v want %v", tc.total, tc.weights, got, tc.want)
			}
		}
		if residual.Cmp(model.NewAmount(tc.residue)) != 0 {
			t.Fatalf("allocate %d over %v: residual %s want %d", tc.total, tc.weights, residual, tc.residue)
		}
	}
}

func TestWriteDiagnosticsStages(t *testing.T) {
	t.Run("serialize", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trace.json")
		entries := []model.SampleEntry{{Alpha: math.NaN()}}

		err := WriteDiagnostics(path, entries)
		var diagErr *DiagnosticError
		if !errors.As(err, &diagErr) || diagErr.Stage != "serialize" {
			t.Fatalf("expected serialize DiagnosticError, got %v", err)
		}
		if diagErr.Path != path {
			t.Fatalf("path mismatch: %s", diagErr.Path)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Fatalf("trace file should not exist after serialize failure")
		}
	})

	t.Run("write", func(t *testing.T) {
		const full = "/dev/full"
		if _, err := os.Stat(full); err != nil {
			t.Skipf("%s not available: %v", full, err)
		}
		engine := newTestEngine(t, DefaultConfig())
		approx, err := engine.Run(Request{
			Pair:         testPair(t),
			Input:        testValue(t, "1000000gm"),
			CurrentPrice: 2.0,
		}, full)

		var diagErr *DiagnosticError
		if !errors.As(err, &diagErr) || diagErr.Stage != "write" {
			t.Fatalf("expected write DiagnosticError, got %v", err)
		}
		if approx == nil || len(approx.Positions) != NumPoolsPrecision {
			t.Fatalf("approximation should survive a diagnostic failure")
		}
	})
}
