package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/corentings/chess"
)

// Request parameter bounds. Depth values follow typical UCI engine limits.
const (
	MaxFENLength = 120
	MaxMultiPV   = 10
	MaxDepth     = 60
	MaxDepthStep = 5

	MinMoveTime = 25 * time.Millisecond
	MaxMoveTime = 60 * time.Second
	MinThrottle = 25 * time.Millisecond
	MaxThrottle = 2 * time.Second
)

// AnalysisRequest holds the immutable parameters for one streamed analysis.
// Construct via NewAnalysisRequest for defaults, then adjust fields before
// Validate is called by the session. A zero MoveTime means no fixed time
// budget.
type AnalysisRequest struct {
	// FEN is the target board position.
	FEN string
	// MultiPV is the number of principal variations to stream (1-10).
	MultiPV int
	// MinDepth is the starting depth for the incremental stream.
	MinDepth int
	// MaxDepth is the depth at which the stream completes.
	MaxDepth int
	// DepthStep is the depth increment between updates (1-5).
	DepthStep int
	// MoveTime optionally caps total engine think time.
	MoveTime time.Duration
	// Throttle is the minimum interval between depth update events.
	Throttle time.Duration
}

// NewAnalysisRequest returns a request for fen with the streaming defaults
// (5 variations, depths 8-22, step 1, 200ms throttle, no time budget).
func NewAnalysisRequest(fen string) AnalysisRequest {
	return AnalysisRequest{
		FEN:       fen,
		MultiPV:   5,
		MinDepth:  8,
		MaxDepth:  22,
		DepthStep: 1,
		Throttle:  200 * time.Millisecond,
	}
}

// Validate normalizes the FEN, checks every invariant and parses the
// position. It returns the side to move ("white" or "black") on success and
// a *StreamError with code invalid_position on failure. Validation happens
// before any resource is acquired.
func (r *AnalysisRequest) Validate() (string, error) {
	r.FEN = strings.Join(strings.Fields(r.FEN), " ")
	if r.FEN == "" {
		return "", NewStreamError(ErrCodeInvalidPosition, false, "fen must not be empty")
	}
	if len(r.FEN) > MaxFENLength {
		return "", NewStreamError(ErrCodeInvalidPosition, false,
			fmt.Sprintf("fen exceeds %d characters", MaxFENLength))
	}
	if r.MultiPV < 1 || r.MultiPV > MaxMultiPV {
		return "", NewStreamError(ErrCodeInvalidPosition, false,
			fmt.Sprintf("multipv must be between 1 and %d", MaxMultiPV))
	}
	if r.MinDepth < 1 || r.MinDepth > MaxDepth || r.MaxDepth < 1 || r.MaxDepth > MaxDepth {
		return "", NewStreamError(ErrCodeInvalidPosition, false,
			fmt.Sprintf("depths must be between 1 and %d", MaxDepth))
	}
	if r.MaxDepth < r.MinDepth {
		return "", NewStreamError(ErrCodeInvalidPosition, false, "max depth must be >= min depth")
	}
	if r.DepthStep < 1 || r.DepthStep > MaxDepthStep {
		return "", NewStreamError(ErrCodeInvalidPosition, false,
			fmt.Sprintf("depth step must be between 1 and %d", MaxDepthStep))
	}
	if r.MoveTime != 0 && (r.MoveTime < MinMoveTime || r.MoveTime > MaxMoveTime) {
		return "", NewStreamError(ErrCodeInvalidPosition, false,
			fmt.Sprintf("movetime must be between %s and %s", MinMoveTime, MaxMoveTime))
	}
	if r.Throttle < MinThrottle || r.Throttle > MaxThrottle {
		return "", NewStreamError(ErrCodeInvalidPosition, false,
			fmt.Sprintf("throttle must be between %s and %s", MinThrottle, MaxThrottle))
	}

	side, err := SideToMove(r.FEN)
	if err != nil {
		return "", err
	}
	return side, nil
}

// SideToMove parses fen and returns "white" or "black". Malformed positions
// yield a *StreamError with code invalid_position.
func SideToMove(fen string) (string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", WrapStreamError(ErrCodeInvalidPosition, false, "invalid fen", err)
	}
	game := chess.NewGame(opt)
	if game.Position().Turn() == chess.White {
		return "white", nil
	}
	return "black", nil
}
