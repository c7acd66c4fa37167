package approximate

import (
	"math/big"
	"sort"

	"github.com/holiman/uint256"

	"liquidityShaper/internal/model"
)

// Residual records the units handed out by the largest-remainder rule after
// flooring every share. Each side is always below its position count.
type Residual struct {
	Input   model.Amount `json:"input"`
	Counter model.Amount `json:"counter"`
}

// Approximation is the result of one engine invocation.
type Approximation struct {
	Request   Request
	Samples   []Sample
	Positions []model.Position
	// Payoffs mirror Positions in input orientation.
	Payoffs []model.Payoff
	// R1 is the input asset total, R2 the counter asset total implied by the
	// reference price.
	R1       model.Amount
	R2       model.Amount
	Residual Residual
}

// TotalK is the invariant r1*r2 of the approximated curve.
func (a *Approximation) TotalK() float64 {
	return a.R1.Float64() * a.R2.Float64()
}

var q192 = new(uint256.Int).Lsh(uint256.NewInt(1), 192)

func buildPositions(req Request, cfg Config, samples []Sample) (*Approximation, error) {
	below := cfg.below()

	r1 := req.Input.Amount
	r2, err := counterTotal(req)
	if err != nil {
		return nil, &ArithmeticError{Index: NoSample, Op: "counter reserve total", Err: err}
	}

	sqrtRatios := make([]*uint256.Int, 0, len(samples)+1)
	for i, sample := range samples {
		if i == 0 {
			ratio, err := SqrtRatioAtTick(sample.LowerTick)
			if err != nil {
				return nil, &ArithmeticError{Index: i, Op: "sqrt ratio", Err: err}
			}
			sqrtRatios = append(sqrtRatios, ratio)
		}
		ratio, err := SqrtRatioAtTick(sample.UpperTick)
		if err != nil {
			return nil, &ArithmeticError{Index: i, Op: "sqrt ratio", Err: err}
		}
		sqrtRatios = append(sqrtRatios, ratio)
	}

	counterWeights := make([]*uint256.Int, 0, below)
	for i := 0; i < below; i++ {
		counterWeights = append(counterWeights, new(uint256.Int).Sub(sqrtRatios[i+1], sqrtRatios[i]))
	}
	inputWeights := make([]*uint256.Int, 0, len(samples)-below)
	for i := below; i < len(samples); i++ {
		lower := new(uint256.Int).Div(q192, sqrtRatios[i])
		upper := new(uint256.Int).Div(q192, sqrtRatios[i+1])
		inputWeights = append(inputWeights, lower.Sub(lower, upper))
	}

	counterShares, counterResidual, err := allocate(r2.Uint256(), counterWeights, 0)
	if err != nil {
		return nil, err
	}
	inputShares, inputResidual, err := allocate(r1.Uint256(), inputWeights, below)
	if err != nil {
		return nil, err
	}

	approx := &Approximation{
		Request:   req,
		Samples:   samples,
		Positions: make([]model.Position, 0, len(samples)),
		Payoffs:   make([]model.Payoff, 0, len(samples)),
		R1:        r1,
		R2:        r2,
		Residual:  Residual{Input: inputResidual, Counter: counterResidual},
	}

	for i, sample := range samples {
		var payoff model.Payoff
		if i < below {
			payoff.R2 = counterShares[i]
		} else {
			payoff.R1 = inputShares[i-below]
		}
		payoff.LowerTick = sample.LowerTick
		payoff.UpperTick = sample.UpperTick
		payoff.LowerPrice = PriceAtTick(float64(sample.LowerTick))
		payoff.UpperPrice = PriceAtTick(float64(sample.UpperTick))

		approx.Payoffs = append(approx.Payoffs, payoff)
		approx.Positions = append(approx.Positions, toPosition(req, payoff))
	}

	return approx, nil
}

// counterTotal is floor(amount * price) in input orientation, computed on the
// exact rational value of the float64 price.
func counterTotal(req Request) (model.Amount, error) {
	price := new(big.Rat).SetFloat64(req.CurrentPrice)
	if price == nil || price.Sign() <= 0 {
		return model.Amount{}, ErrInvalidRounding
	}
	if !req.inputIsStart() {
		price.Inv(price)
	}
	total := new(big.Int).Mul(req.Input.Amount.Big(), price.Num())
	total.Quo(total, price.Denom())

	amount, err := model.AmountFromBig(total)
	if err != nil {
		return model.Amount{}, ErrReserveOverflow
	}
	return amount, nil
}

// allocate splits total across weights as floor(total*w/W) and gives the
// remaining units, one each, to the largest remainders (ties to the lower
// index). offset maps local indexes back to sample indexes for errors.
func allocate(total *uint256.Int, weights []*uint256.Int, offset int) ([]model.Amount, model.Amount, error) {
	if len(weights) == 0 {
		return nil, model.Amount{}, nil
	}

	sum := new(uint256.Int)
	for i, w := range weights {
		if _, overflow := sum.AddOverflow(sum, w); overflow {
			return nil, model.Amount{}, &ArithmeticError{Index: offset + i, Op: "weight sum", Err: ErrReserveOverflow}
		}
	}
	if sum.IsZero() {
		return nil, model.Amount{}, &ArithmeticError{Index: offset, Op: "weight sum", Err: ErrInvalidRounding}
	}

	shares := make([]*uint256.Int, len(weights))
	remainders := make([]*uint256.Int, len(weights))
	allocated := new(uint256.Int)
	for i, w := range weights {
		share, overflow := new(uint256.Int).MulDivOverflow(total, w, sum)
		if overflow {
			return nil, model.Amount{}, &ArithmeticError{Index: offset + i, Op: "reserve share", Err: ErrReserveOverflow}
		}
		shares[i] = share
		remainders[i] = new(uint256.Int).MulMod(total, w, sum)
		allocated.Add(allocated, share)
	}

	if allocated.Gt(total) {
		return nil, model.Amount{}, &ArithmeticError{Index: offset, Op: "reserve shares", Err: ErrInvalidRounding}
	}
	residual := new(uint256.Int).Sub(total, allocated)
	if !residual.Lt(uint256.NewInt(uint64(len(weights)))) {
		return nil, model.Amount{}, &ArithmeticError{Index: offset, Op: "rounding residual", Err: ErrInvalidRounding}
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].Gt(remainders[order[b]])
	})
	for _, idx := range order[:residual.Uint64()] {
		shares[idx].AddUint64(shares[idx], 1)
	}

	amounts := make([]model.Amount, len(shares))
	for i, share := range shares {
		amount, err := model.AmountFromUint256(share)
		if err != nil {
			return nil, model.Amount{}, &ArithmeticError{Index: offset + i, Op: "reserve", Err: ErrReserveOverflow}
		}
		amounts[i] = amount
	}

	residualAmount, err := model.AmountFromUint256(residual)
	if err != nil {
		return nil, model.Amount{}, &ArithmeticError{Index: offset, Op: "rounding residual", Err: ErrInvalidRounding}
	}
	return amounts, residualAmount, nil
}

// toPosition converts an input-oriented payoff into a pair-oriented position.
func toPosition(req Request, payoff model.Payoff) model.Position {
	pos := model.Position{
		Pair:   req.Pair,
		FeeBps: req.FeeBps,
	}
	if req.inputIsStart() {
		pos.LowerTick = payoff.LowerTick
		pos.UpperTick = payoff.UpperTick
		pos.Reserves = model.Reserves{R1: payoff.R1, R2: payoff.R2}
		return pos
	}
	pos.LowerTick = -payoff.UpperTick
	pos.UpperTick = -payoff.LowerTick
	pos.Reserves = model.Reserves{R1: payoff.R2, R2: payoff.R1}
	return pos
}
