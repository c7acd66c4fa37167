package approximate

import (
	"errors"
	"fmt"
)

// Validation failures.
var (
	ErrAssetNotInPair   = errors.New("input asset is not part of the pair")
	ErrZeroAmount       = errors.New("input amount must be non-zero")
	ErrFeeTooHigh       = fmt.Errorf("fee exceeds maximum of %dbps", MaxFeeBps)
	ErrNonFinitePrice   = errors.New("current price must be finite")
	ErrNonPositivePrice = errors.New("current price must be positive")
	ErrPriceOutOfRange  = errors.New("current price outside representable tick range")
	ErrInvalidConfig    = errors.New("invalid approximation config")
)

// Arithmetic failures.
var (
	ErrReserveOverflow = errors.New("reserve overflow")
	ErrInvalidRounding = errors.New("invalid rounding result")
)

// NoSample marks an ArithmeticError that concerns the whole request.
const NoSample = -1

// ArithmeticError reports a failed reserve computation, for one sample or,
// with Index NoSample, for the request totals.
type ArithmeticError struct {
	Index int
	Op    string
	Err   error
}

func (e *ArithmeticError) Error() string {
	if e.Index == NoSample {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sample %d: %s: %v", e.Index, e.Op, e.Err)
}

func (e *ArithmeticError) Unwrap() error {
	return e.Err
}

// DiagnosticError reports a failure while writing the diagnostic trace.
// Stage is one of "serialize", "create" or "write". Entries built by the
// engine are always finite, so "serialize" only arises from caller-built
// entries passed to WriteDiagnostics. It never replaces a computed
// approximation.
type DiagnosticError struct {
	Path  string
	Stage string
	Err   error
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("diagnostics %s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}
