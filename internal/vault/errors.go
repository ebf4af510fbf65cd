package vault

import (
	"errors"
	"fmt"
)

// Phase identifies where in the pipeline an operation failed. No pool state
// is mutated when any phase fails.
type Phase int

const (
	PhaseValidate Phase = iota
	PhasePreHook
	PhaseCompute
	PhasePostHook
	PhaseCommit
)

func (p Phase) String() string {
	switch p {
	case PhaseValidate:
		return "validate"
	case PhasePreHook:
		return "pre-hook"
	case PhaseCompute:
		return "compute"
	case PhasePostHook:
		return "post-hook"
	case PhaseCommit:
		return "commit"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidTokenIndex is returned when a token index is out of range.
	ErrInvalidTokenIndex = errors.New("token index out of range")
	// ErrSameToken is returned when a swap names the same token twice.
	ErrSameToken = errors.New("same token on both sides")
	// ErrNegativeAmount is returned when a request carries a negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrZeroAmount is returned when a request carries no amount at all.
	ErrZeroAmount = errors.New("zero amount")
	// ErrInputShape is returned when request slices do not match the pool.
	ErrInputShape = errors.New("input shape does not match pool")
	// ErrPoolShape is returned when a pool's own slices are inconsistent.
	ErrPoolShape = errors.New("pool state shape invalid")
	// ErrInvalidSwapFee is returned when a swap fee is outside [0, 1).
	ErrInvalidSwapFee = errors.New("swap fee out of range")
	// ErrBelowMinBpt is returned when minted BPT falls short of the minimum.
	ErrBelowMinBpt = errors.New("BPT out below minimum")
	// ErrAboveMaxBpt is returned when burned BPT exceeds the maximum.
	ErrAboveMaxBpt = errors.New("BPT in above maximum")
	// ErrAboveMaxAmountIn is returned when a required input exceeds its cap.
	ErrAboveMaxAmountIn = errors.New("amount in above maximum")
	// ErrBelowMinAmountOut is returned when an output falls short of its floor.
	ErrBelowMinAmountOut = errors.New("amount out below minimum")
)

// Error wraps a pipeline failure with the operation and phase it occurred in.
type Error struct {
	Op    string
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s phase: %v", e.Op, e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, phase Phase, err error) error {
	return &Error{Op: op, Phase: phase, Err: err}
}
