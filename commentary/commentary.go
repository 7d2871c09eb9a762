package commentary

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/enginemesh/core"
)

// SystemPrompt constrains the model to a single compact JSON object so the
// output can be rendered directly by a UI.
const SystemPrompt = "You are a chess UI assistant. Return exactly one JSON object and nothing else. " +
	"No markdown, no code fences, no prose outside JSON. " +
	"Keep all values concise and grounded in the provided position and engine context."

// Request captures the normalized commentary input produced from a finished
// or in-flight analysis.
type Request struct {
	// FEN is the position under discussion.
	FEN string `json:"fen"`
	// SideToMove is "white" or "black".
	SideToMove string `json:"side_to_move"`
	// Lines are the ranked engine lines giving the model concrete grounding.
	Lines []core.Line `json:"lines"`
	// Depth is the search depth the lines were taken at.
	Depth int `json:"depth,omitempty"`
}

// Usage captures token usage statistics for a commentary response.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Commentary is the provider response.
type Commentary struct {
	Model      string `json:"model"`
	Text       string `json:"text"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      *Usage `json:"usage,omitempty"`
}

// Info contains metadata about a commentator implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Commentator is the minimal interface required to generate commentary.
type Commentator interface {
	Comment(ctx context.Context, req Request) (*Commentary, error)

	// Info returns information about the commentator implementation.
	Info() Info
}

// BuildUserMessage renders the full user prompt: the response contract
// followed by the position context and the candidate engine lines.
func BuildUserMessage(req Request) string {
	var b strings.Builder
	b.WriteString("Return a JSON object with these fields only:\n")
	b.WriteString("{\n")
	b.WriteString("  \"position_plan_title\": \"string, less than 5 words\",\n")
	b.WriteString("  \"advantage_side\": \"white|black|equal|unclear\",\n")
	b.WriteString("  \"advantage_summary\": \"string\",\n")
	b.WriteString("  \"best_move_san\": \"string\",\n")
	b.WriteString("  \"best_move_reason\": \"string\",\n")
	b.WriteString("  \"danger_to_watch\": \"string\",\n")
	b.WriteString("  \"white_plan\": [\"bullet 1\", \"bullet 2\"],\n")
	b.WriteString("  \"black_plan\": [\"bullet 1\", \"bullet 2\"],\n")
	b.WriteString("  \"concrete_ideas\": [{\"title\": \"string\", \"description\": \"string\", \"selected_line_id\": \"L01\", \"playback_pv_uci\": [\"e2e4\", \"e7e5\"]}]\n")
	b.WriteString("}\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- position_plan_title must be less than 5 words.\n")
	b.WriteString("- best_move_san must be SAN notation.\n")
	b.WriteString("- Use plain language and keep each string short.\n")
	b.WriteString("- white_plan and black_plan must contain exactly 2 bullets each.\n")
	b.WriteString("- concrete_ideas must contain 1 or 2 ideas.\n")
	b.WriteString("- selected_line_id must reference candidate lines from the engine context (Lxx format).\n")
	b.WriteString("- playback_pv_uci must be a legal UCI prefix from the selected candidate line.\n")
	b.WriteString("- Do not include any keys other than the keys above.\n")
	b.WriteString("\nContext:\n")
	b.WriteString("FEN: " + req.FEN + "\n")
	b.WriteString("Side to move: " + req.SideToMove + "\n")
	if ctx := FormatLines(req.Lines, req.Depth); ctx != "" {
		b.WriteString("Engine context:\n" + ctx)
	}
	return b.String()
}

// FormatLines renders ranked lines as Lxx candidate entries referenced by the
// response contract.
func FormatLines(lines []core.Line, depth int) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(fmt.Sprintf("L%02d: %s", line.Rank, line.SAN))
		if line.MateInPlies != nil {
			b.WriteString(fmt.Sprintf(" (mate in %d)", *line.MateInPlies))
		} else if line.CentipawnScore != nil {
			b.WriteString(fmt.Sprintf(" (cp %+d)", *line.CentipawnScore))
		}
		if depth > 0 {
			b.WriteString(fmt.Sprintf(" depth %d", depth))
		}
		if len(line.PrincipalVariation) > 0 {
			b.WriteString(" pv " + strings.Join(line.PrincipalVariation, " "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// StripCodeFence removes a surrounding markdown code fence when a model
// ignores the plain-JSON instruction.
func StripCodeFence(text string) string {
	stripped := strings.TrimSpace(text)
	if !strings.HasPrefix(stripped, "```") {
		return stripped
	}
	stripped = strings.TrimPrefix(stripped, "```json")
	stripped = strings.TrimPrefix(stripped, "```")
	stripped = strings.TrimSuffix(strings.TrimSpace(stripped), "```")
	return strings.TrimSpace(stripped)
}

// MockCommentator is a lightweight in-memory Commentator useful for tests &
// examples.
type MockCommentator struct {
	info      Info
	responses map[string]string
}

// NewMockCommentator constructs a MockCommentator.
func NewMockCommentator(name string) *MockCommentator {
	return &MockCommentator{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a FEN.
func (m *MockCommentator) AddResponse(fen, response string) { m.responses[fen] = response }

// Comment implements Commentator; returns the canned response for the FEN.
func (m *MockCommentator) Comment(_ context.Context, req Request) (*Commentary, error) {
	text, ok := m.responses[req.FEN]
	if !ok {
		return nil, fmt.Errorf("no canned commentary for position %q", req.FEN)
	}
	return &Commentary{Model: m.info.Name, Text: text, StopReason: "stop"}, nil
}

// Info returns metadata describing this mock implementation.
func (m *MockCommentator) Info() Info { return m.info }
