package openings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/corentings/chess"
)

// StandardStartFENPrefix identifies the standard initial position. Lookups
// from any other starting position never match book lines.
const StandardStartFENPrefix = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// StarterFileName is the bundled minimal book used when no full database has
// been downloaded.
const StarterFileName = "starter.tsv"

// Database sources reported alongside every lookup.
const (
	SourceMissing = "missing"
	SourceStarter = "starter"
	SourceFull    = "full"
)

var (
	pgnMoveNumberPattern = regexp.MustCompile(`^\d+\.(?:\.\.)?$`)
	pgnCommentPattern    = regexp.MustCompile(`\{[^}]*\}`)
	pgnNAGPattern        = regexp.MustCompile(`\$\d+`)
	pgnVariationPattern  = regexp.MustCompile(`\([^)]*\)`)
	pgnAnnotationPattern = regexp.MustCompile(`[!?]+`)
)

// Line is one named opening read from a TSV row (eco, name, pgn, uci, epd).
type Line struct {
	ECO   string
	Name  string
	PGN   string
	UCI   string
	EPD   string
	Moves []string
}

// Match is the deepest named opening reached by the played moves.
type Match struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
	Ply  int    `json:"ply"`
	PGN  string `json:"pgn,omitempty"`
	UCI  string `json:"uci,omitempty"`
	EPD  string `json:"epd,omitempty"`
}

// Continuation is one popular book move from the matched position, ranked by
// how many book lines pass through it.
type Continuation struct {
	UCI        string `json:"uci"`
	FromSquare string `json:"from_square"`
	ToSquare   string `json:"to_square"`
	Rank       int    `json:"rank"`
	ECO        string `json:"eco,omitempty"`
	Name       string `json:"name,omitempty"`
	Ply        int    `json:"ply,omitempty"`
	PGN        string `json:"pgn,omitempty"`
}

// DatabaseInfo describes which book files answered a lookup.
type DatabaseInfo struct {
	Source    string `json:"source"`
	FileCount int    `json:"file_count"`
}

// LookupResult bundles the match, the continuations from the reached node and
// the database provenance.
type LookupResult struct {
	Match         *Match         `json:"match,omitempty"`
	Continuations []Continuation `json:"continuations"`
	Database      DatabaseInfo   `json:"database"`
}

type trieNode struct {
	children   map[string]*trieNode
	line       *Line
	sample     *Line
	branchSize int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// Book is an immutable opening index.
type Book struct {
	root *trieNode
	info DatabaseInfo
}

// Load reads every TSV file under dir. A directory containing only the
// starter file reports the starter source; a missing or empty directory
// yields an empty book rather than an error so callers degrade gracefully.
func Load(dir string) (*Book, error) {
	files, source := resolveTSVFiles(dir)
	book := &Book{root: newTrieNode(), info: DatabaseInfo{Source: source, FileCount: len(files)}}
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open openings file %s: %w", path, err)
		}
		err = book.addFrom(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read openings file %s: %w", path, err)
		}
	}
	return book, nil
}

// LoadReader builds a book from a single TSV stream, mainly for tests and
// embedded starter data.
func LoadReader(r io.Reader, info DatabaseInfo) (*Book, error) {
	book := &Book{root: newTrieNode(), info: info}
	if err := book.addFrom(r); err != nil {
		return nil, err
	}
	return book, nil
}

// Info returns the database provenance of the loaded book.
func (b *Book) Info() DatabaseInfo { return b.info }

// Len reports how many named lines the book holds.
func (b *Book) Len() int { return b.root.branchSize }

// Lookup walks the played UCI moves and returns the deepest named opening
// together with ranked continuations from the reached position. When the
// moves leave the book early no continuations are offered.
func (b *Book) Lookup(moves []string, maxContinuations int) LookupResult {
	node, best, fullyMatched := b.traverse(moves)

	result := LookupResult{Database: b.info}
	if best != nil {
		result.Match = toMatch(best)
	}
	if fullyMatched {
		result.Continuations = buildContinuations(node, maxContinuations)
	}
	return result
}

// LookupFrom is Lookup guarded by the starting position: games that did not
// begin from the standard initial position cannot be in book.
func (b *Book) LookupFrom(initialFEN string, moves []string, maxContinuations int) LookupResult {
	if initialFEN != "" && !strings.HasPrefix(strings.TrimSpace(initialFEN), StandardStartFENPrefix) {
		return LookupResult{Database: b.info}
	}
	return b.Lookup(moves, maxContinuations)
}

func (b *Book) traverse(moves []string) (*trieNode, *Line, bool) {
	node := b.root
	var best *Line
	for _, move := range moves {
		next, ok := node.children[move]
		if !ok {
			return node, best, false
		}
		node = next
		if node.line != nil {
			best = node.line
		}
	}
	return node, best, true
}

func (b *Book) addFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		b.insert(line)
	}
	return scanner.Err()
}

func (b *Book) insert(line *Line) {
	node := b.root
	node.branchSize++
	if node.sample == nil {
		node.sample = line
	}
	for _, move := range line.Moves {
		next, ok := node.children[move]
		if !ok {
			next = newTrieNode()
			node.children[move] = next
		}
		node = next
		node.branchSize++
		if node.sample == nil {
			node.sample = line
		}
	}
	if node.line == nil {
		node.line = line
	}
}

// parseLine reads one TSV row. Rows without an eco code, a name or derivable
// UCI moves are skipped. The header row fails SAN decoding and is skipped the
// same way.
func parseLine(raw string) (*Line, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}
	parts := strings.Split(trimmed, "\t")
	if len(parts) < 3 {
		return nil, false
	}

	line := &Line{ECO: parts[0], Name: parts[1], PGN: parts[2]}
	if len(parts) > 3 {
		line.UCI = parts[3]
	}
	if len(parts) > 4 {
		line.EPD = parts[4]
	}

	line.Moves = strings.Fields(line.UCI)
	if len(line.Moves) == 0 && line.PGN != "" {
		line.Moves = uciMovesFromPGN(line.PGN)
	}
	if line.ECO == "" || line.Name == "" || len(line.Moves) == 0 {
		return nil, false
	}
	return line, true
}

// uciMovesFromPGN decodes a bare PGN movetext into UCI moves, used for book
// files that omit the uci column. An undecodable line is dropped entirely.
func uciMovesFromPGN(pgn string) []string {
	cleaned := pgnCommentPattern.ReplaceAllString(pgn, " ")
	cleaned = pgnVariationPattern.ReplaceAllString(cleaned, " ")
	cleaned = pgnNAGPattern.ReplaceAllString(cleaned, " ")

	game := chess.NewGame()
	var moves []string
	for _, token := range strings.Fields(cleaned) {
		if token == "*" || token == "1-0" || token == "0-1" || token == "1/2-1/2" {
			break
		}
		if pgnMoveNumberPattern.MatchString(token) {
			continue
		}
		san := pgnAnnotationPattern.ReplaceAllString(token, "")
		if err := game.MoveStr(san); err != nil {
			return nil
		}
		played := game.Moves()
		moves = append(moves, played[len(played)-1].String())
	}
	return moves
}

func toMatch(line *Line) *Match {
	return &Match{
		ECO:  line.ECO,
		Name: line.Name,
		Ply:  len(line.Moves),
		PGN:  line.PGN,
		UCI:  line.UCI,
		EPD:  line.EPD,
	}
}

func buildContinuations(node *trieNode, maxContinuations int) []Continuation {
	if maxContinuations <= 0 || len(node.children) == 0 {
		return nil
	}

	type candidate struct {
		move           string
		branchSize     int
		representative *Line
	}
	ranked := make([]candidate, 0, len(node.children))
	for move, child := range node.children {
		rep := child.line
		if rep == nil {
			rep = child.sample
		}
		ranked = append(ranked, candidate{move: move, branchSize: child.branchSize, representative: rep})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].branchSize != ranked[j].branchSize {
			return ranked[i].branchSize > ranked[j].branchSize
		}
		return ranked[i].move < ranked[j].move
	})

	if len(ranked) > maxContinuations {
		ranked = ranked[:maxContinuations]
	}
	continuations := make([]Continuation, 0, len(ranked))
	for i, c := range ranked {
		cont := Continuation{
			UCI:        c.move,
			FromSquare: c.move[:2],
			ToSquare:   c.move[2:4],
			Rank:       i + 1,
		}
		if c.representative != nil {
			cont.ECO = c.representative.ECO
			cont.Name = c.representative.Name
			cont.Ply = len(c.representative.Moves)
			cont.PGN = c.representative.PGN
		}
		continuations = append(continuations, cont)
	}
	return continuations
}

// resolveTSVFiles picks the book files for dir: any non-starter TSVs form the
// full database, a lone starter file is the starter tier, nothing means no
// book at all.
func resolveTSVFiles(dir string) ([]string, string) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil || len(entries) == 0 {
		return nil, SourceMissing
	}
	sort.Strings(entries)

	var nonStarter []string
	for _, path := range entries {
		if filepath.Base(path) != StarterFileName {
			nonStarter = append(nonStarter, path)
		}
	}
	if len(nonStarter) > 0 {
		return nonStarter, SourceFull
	}
	return entries, SourceStarter
}
