package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event type discriminators as they appear on the wire.
const (
	EventTypeDepthUpdate = "depth_update"
	EventTypeComplete    = "analysis_complete"
	EventTypeError       = "analysis_error"
)

// Reason describes why an analysis stream terminated.
type Reason string

// Terminal reasons carried by Complete events.
const (
	ReasonDepthReached    Reason = "depth_reached"
	ReasonMoveTimeElapsed Reason = "movetime_elapsed"
	ReasonClientCancelled Reason = "client_cancelled"
	ReasonEngineStopped   Reason = "engine_stopped"
)

// Event is the tagged union emitted by an analysis session. A session emits
// zero or more DepthUpdate events with non-decreasing depth followed by
// exactly one terminal event (Complete or Error); nothing follows a terminal
// event. After emission an event should be treated as immutable.
type Event interface {
	// EventType returns the wire discriminator ("depth_update",
	// "analysis_complete" or "analysis_error").
	EventType() string
	// OccurredAt returns the UTC emission timestamp.
	OccurredAt() time.Time
}

// Line is one ranked principal variation. Ranks are 1-based and contiguous
// within an event. Exactly one of CentipawnScore / MateInPlies is set when
// the engine reported an interpretable score; both are unset otherwise.
type Line struct {
	Rank               int      `json:"rank"`
	Move               string   `json:"move"`
	FromSquare         string   `json:"from_square"`
	ToSquare           string   `json:"to_square"`
	SAN                string   `json:"san,omitempty"`
	CentipawnScore     *int     `json:"centipawn_score,omitempty"`
	MateInPlies        *int     `json:"mate_in_plies,omitempty"`
	PrincipalVariation []string `json:"principal_variation"`
}

// DepthUpdate is an incremental per-depth analysis snapshot.
type DepthUpdate struct {
	Type           string    `json:"type"`
	SessionID      string    `json:"session_id"`
	Position       string    `json:"position"`
	SideToMove     string    `json:"side_to_move"`
	Depth          int       `json:"depth"`
	SelDepth       *int      `json:"seldepth,omitempty"`
	VariationCount int       `json:"variation_count"`
	NodesPerSecond *int64    `json:"nodes_per_second,omitempty"`
	Nodes          *int64    `json:"nodes,omitempty"`
	BestMove       string    `json:"best_move,omitempty"`
	Lines          []Line    `json:"lines"`
	Timestamp      time.Time `json:"timestamp"`
}

// EventType returns the wire discriminator for depth updates.
func (e DepthUpdate) EventType() string { return EventTypeDepthUpdate }

// OccurredAt returns the emission timestamp.
func (e DepthUpdate) OccurredAt() time.Time { return e.Timestamp }

// Complete is the successful terminal event of a stream.
type Complete struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	Position   string    `json:"position"`
	FinalDepth int       `json:"final_depth"`
	BestMove   string    `json:"best_move,omitempty"`
	Lines      []Line    `json:"lines"`
	Reason     Reason    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventType returns the wire discriminator for completion events.
func (e Complete) EventType() string { return EventTypeComplete }

// OccurredAt returns the emission timestamp.
func (e Complete) OccurredAt() time.Time { return e.Timestamp }

// Error is the failing terminal event of a stream. Code is one of the stable
// taxonomy codes; Retryable tells the caller whether an immediate retry with
// the same parameters may succeed.
type Error struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

// EventType returns the wire discriminator for error events.
func (e Error) EventType() string { return EventTypeError }

// OccurredAt returns the emission timestamp.
func (e Error) OccurredAt() time.Time { return e.Timestamp }

// NewDepthUpdate stamps a depth update with its discriminator and timestamp.
func NewDepthUpdate(sessionID string) DepthUpdate {
	return DepthUpdate{Type: EventTypeDepthUpdate, SessionID: sessionID, Timestamp: time.Now().UTC()}
}

// NewComplete stamps a completion event with its discriminator and timestamp.
func NewComplete(sessionID string) Complete {
	return Complete{Type: EventTypeComplete, SessionID: sessionID, Timestamp: time.Now().UTC()}
}

// NewErrorEvent builds a terminal error event from a StreamError.
func NewErrorEvent(sessionID string, err *StreamError) Error {
	return Error{
		Type:      EventTypeError,
		SessionID: sessionID,
		Code:      err.Code,
		Message:   err.Message,
		Retryable: err.Retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionID generates a short, unique analysis session identifier.
func NewSessionID() string {
	return "analysis-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
