package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	if !strings.HasPrefix(id, "analysis-") {
		t.Fatalf("unexpected prefix: %s", id)
	}
	if len(id) != len("analysis-")+12 {
		t.Fatalf("unexpected length: %s", id)
	}
	if id == NewSessionID() {
		t.Error("ids should be unique")
	}
}

func TestEventWireShapes(t *testing.T) {
	cp := 35
	up := NewDepthUpdate("analysis-abc")
	up.Position = "8/8/8/8/8/8/8/K6k w - - 0 1"
	up.SideToMove = "white"
	up.Depth = 12
	up.VariationCount = 2
	up.BestMove = "a1a2"
	up.Lines = []Line{{Rank: 1, Move: "a1a2", FromSquare: "a1", ToSquare: "a2", CentipawnScore: &cp, PrincipalVariation: []string{"a1a2"}}}

	raw, err := json.Marshal(up)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["type"] != EventTypeDepthUpdate {
		t.Errorf("type = %v", decoded["type"])
	}
	if _, present := decoded["nodes"]; present {
		t.Error("unset nodes should be omitted")
	}

	line := decoded["lines"].([]any)[0].(map[string]any)
	if _, present := line["mate_in_plies"]; present {
		t.Error("unset mate should be omitted")
	}
	if line["centipawn_score"].(float64) != 35 {
		t.Errorf("centipawn_score = %v", line["centipawn_score"])
	}
}

func TestNewErrorEvent(t *testing.T) {
	ev := NewErrorEvent("", NewStreamError(ErrCodeEngineBusy, true, "capacity full"))
	if ev.Code != ErrCodeEngineBusy || !ev.Retryable {
		t.Fatalf("unexpected event: %+v", ev)
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "session_id") {
		t.Error("empty session_id should be omitted")
	}
}

func TestStreamErrorUnwrap(t *testing.T) {
	cause := NewStreamError(ErrCodeEngineError, true, "inner")
	wrapped := WrapStreamError(ErrCodeStreamFailed, false, "outer", cause)

	se, ok := AsStreamError(wrapped)
	if !ok || se.Code != ErrCodeStreamFailed {
		t.Fatalf("AsStreamError = %+v, %v", se, ok)
	}
}
