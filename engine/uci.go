package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/logging"
)

// UCIWorkerOptions configures construction of a UCIWorker.
type UCIWorkerOptions struct {
	// Logger receives protocol-level diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// EngineOptions are applied via "setoption" during the handshake
	// (e.g. Threads, Hash).
	EngineOptions map[string]string
	// QuitGrace bounds how long Quit waits for a clean exit before the
	// process is killed.
	QuitGrace time.Duration
}

// UCIWorker drives one external UCI engine process. It implements both
// analysis capabilities. A worker must be driven by at most one session at a
// time; the pool enforces exclusive ownership.
type UCIWorker struct {
	path   string
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	closer io.Closer
	out    *bufio.Scanner
	logger logging.Logger

	quitGrace time.Duration
	quitOnce  sync.Once
	quitErr   error

	multiPV int
}

// NewUCIWorker spawns the engine binary at path and performs the UCI
// handshake. Spawn or handshake failures terminate the process and return an
// error; the caller (pool) rolls back its created count.
func NewUCIWorker(path string, optFns ...func(o *UCIWorkerOptions)) (*UCIWorker, error) {
	opts := UCIWorkerOptions{
		Logger:    logging.NoOpLogger{},
		QuitGrace: 2 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %q: %w", path, err)
	}

	scanner := bufio.NewScanner(stdout)
	// Long multipv PV lines exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	w := &UCIWorker{
		path:      path,
		cmd:       cmd,
		stdin:     bufio.NewWriter(stdin),
		closer:    stdin,
		out:       scanner,
		logger:    opts.Logger,
		quitGrace: opts.QuitGrace,
	}

	if err := w.handshake(opts.EngineOptions); err != nil {
		_ = w.Quit()
		return nil, err
	}
	return w, nil
}

// Stepped reports the synchronous per-depth capability.
func (w *UCIWorker) Stepped() (SteppedAnalyzer, bool) { return w, true }

// Continuous reports the incremental streaming capability.
func (w *UCIWorker) Continuous() (ContinuousAnalyzer, bool) { return w, true }

func (w *UCIWorker) handshake(engineOpts map[string]string) error {
	if err := w.send("uci"); err != nil {
		return err
	}
	if err := w.waitFor("uciok"); err != nil {
		return err
	}
	for name, value := range engineOpts {
		if err := w.send(fmt.Sprintf("setoption name %s value %s", name, value)); err != nil {
			return err
		}
	}
	if err := w.send("isready"); err != nil {
		return err
	}
	return w.waitFor("readyok")
}

func (w *UCIWorker) send(cmd string) error {
	w.logger.Debug("uci send", "command", cmd)
	if _, err := w.stdin.WriteString(cmd + "\n"); err != nil {
		return core.WrapStreamError(core.ErrCodeEngineError, true, "engine write failed", err)
	}
	if err := w.stdin.Flush(); err != nil {
		return core.WrapStreamError(core.ErrCodeEngineError, true, "engine write failed", err)
	}
	return nil
}

func (w *UCIWorker) waitFor(token string) error {
	for w.out.Scan() {
		if strings.HasPrefix(w.out.Text(), token) {
			return nil
		}
	}
	return core.WrapStreamError(core.ErrCodeEngineError, true,
		fmt.Sprintf("engine exited before %q", token), w.out.Err())
}

func (w *UCIWorker) setMultiPV(n int) error {
	if n == w.multiPV {
		return nil
	}
	if err := w.send(fmt.Sprintf("setoption name MultiPV value %d", n)); err != nil {
		return err
	}
	w.multiPV = n
	return nil
}

// Analyze runs one bounded "go" search and returns the final per-variation
// records, sorted by reported rank.
func (w *UCIWorker) Analyze(ctx context.Context, fen string, depth int, moveTime time.Duration, multiPV int) ([]InfoRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.setMultiPV(multiPV); err != nil {
		return nil, err
	}
	if err := w.send("position fen " + fen); err != nil {
		return nil, err
	}
	goCmd := fmt.Sprintf("go depth %d", depth)
	if moveTime > 0 {
		goCmd += fmt.Sprintf(" movetime %d", moveTime.Milliseconds())
	}
	if err := w.send(goCmd); err != nil {
		return nil, err
	}

	byRank := make(map[int]InfoRecord, multiPV)
	for w.out.Scan() {
		line := w.out.Text()
		if strings.HasPrefix(line, "bestmove") {
			return sortedRecords(byRank), nil
		}
		rec, ok := parseInfoLine(line)
		if !ok || len(rec.PV) == 0 {
			continue
		}
		rank := rec.Rank
		if rank < 1 {
			rank = 1
		}
		byRank[rank] = rec
	}
	return nil, core.WrapStreamError(core.ErrCodeEngineError, true,
		"engine stopped before reporting a best move", w.out.Err())
}

// StartAnalysis opens one continuous "go" search bounded by maxDepth and,
// when moveTime is non-zero, a fixed time budget. A background reader feeds
// incremental records to the returned Analysis until the engine reports its
// best move.
func (w *UCIWorker) StartAnalysis(ctx context.Context, fen string, maxDepth int, moveTime time.Duration, multiPV int) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.setMultiPV(multiPV); err != nil {
		return nil, err
	}
	if err := w.send("position fen " + fen); err != nil {
		return nil, err
	}
	goCmd := fmt.Sprintf("go depth %d", maxDepth)
	if moveTime > 0 {
		goCmd += fmt.Sprintf(" movetime %d", moveTime.Milliseconds())
	}
	if err := w.send(goCmd); err != nil {
		return nil, err
	}

	a := &uciAnalysis{
		worker:  w,
		updates: make(chan InfoRecord, 32),
		stopped: make(chan struct{}),
	}
	go a.read()
	return a, nil
}

// Quit terminates the engine process, first asking politely and killing it
// after the grace period.
func (w *UCIWorker) Quit() error {
	w.quitOnce.Do(func() {
		_ = w.send("quit")
		_ = w.closer.Close()

		done := make(chan error, 1)
		go func() { done <- w.cmd.Wait() }()
		select {
		case err := <-done:
			w.quitErr = err
		case <-time.After(w.quitGrace):
			_ = w.cmd.Process.Kill()
			w.quitErr = <-done
		}
	})
	return w.quitErr
}

// uciAnalysis adapts the worker's stdout into an Analysis. After Stop the
// reader keeps draining engine output (discarding records) until the final
// bestmove so the worker is left in a reusable state.
type uciAnalysis struct {
	worker  *UCIWorker
	updates chan InfoRecord
	stopped chan struct{}

	stopOnce sync.Once
	mu       sync.Mutex
	err      error
}

// Updates yields incremental per-variation records.
func (a *uciAnalysis) Updates() <-chan InfoRecord { return a.updates }

// Stop gracefully ends the search. Idempotent.
func (a *uciAnalysis) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopped)
		_ = a.worker.send("stop")
	})
}

// Err reports a process-level failure once Updates is closed.
func (a *uciAnalysis) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *uciAnalysis) read() {
	defer close(a.updates)
	for a.worker.out.Scan() {
		line := a.worker.out.Text()
		if strings.HasPrefix(line, "bestmove") {
			return
		}
		rec, ok := parseInfoLine(line)
		if !ok {
			continue
		}
		select {
		case a.updates <- rec:
		case <-a.stopped:
			// Consumer is gone; drain to bestmove.
		}
	}
	a.mu.Lock()
	a.err = core.WrapStreamError(core.ErrCodeEngineError, true,
		"engine stopped before reporting a best move", a.worker.out.Err())
	a.mu.Unlock()
}

// parseInfoLine converts one UCI "info" line into an InfoRecord. Lines
// without a depth or PV (currmove reports, "info string" chatter) are
// rejected. Mate distances are kept exactly as the engine reports them, from
// the side to move's perspective.
func parseInfoLine(line string) (InfoRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "info" || fields[1] == "string" {
		return InfoRecord{}, false
	}

	var rec InfoRecord
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			rec.Depth = intField(fields, i+1)
			i++
		case "seldepth":
			rec.SelDepth = intField(fields, i+1)
			i++
		case "multipv":
			rec.Rank = intField(fields, i+1)
			i++
		case "nodes":
			rec.Nodes = int64Field(fields, i+1)
			i++
		case "nps":
			rec.NPS = int64Field(fields, i+1)
			i++
		case "score":
			if i+2 < len(fields) {
				if value, err := strconv.Atoi(fields[i+2]); err == nil {
					switch fields[i+1] {
					case "cp":
						rec.ScoreCP = &value
					case "mate":
						rec.ScoreMate = &value
					}
				}
				i += 2
			}
		case "pv":
			rec.PV = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		}
	}

	if rec.Depth == 0 && len(rec.PV) == 0 {
		return InfoRecord{}, false
	}
	return rec, true
}

func intField(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	n, _ := strconv.Atoi(fields[i])
	return n
}

func int64Field(fields []string, i int) int64 {
	if i >= len(fields) {
		return 0
	}
	n, _ := strconv.ParseInt(fields[i], 10, 64)
	return n
}

func sortedRecords(byRank map[int]InfoRecord) []InfoRecord {
	ranks := make([]int, 0, len(byRank))
	for rank := range byRank {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	records := make([]InfoRecord, 0, len(ranks))
	for _, rank := range ranks {
		records = append(records, byRank[rank])
	}
	return records
}
