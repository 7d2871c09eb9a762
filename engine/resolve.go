package engine

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hupe1980/enginemesh/core"
)

// DefaultBinaryName is looked up on PATH when no binary path is configured.
const DefaultBinaryName = "stockfish"

// ResolveBinary returns a usable engine binary path. A non-empty configured
// path wins when it exists (a leading "~" is expanded); otherwise the default
// binary name is searched on PATH. A miss yields a retryable *StreamError
// with code engine_unavailable, before any resource is acquired.
func ResolveBinary(configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		path := configured
		if strings.HasPrefix(path, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[1:])
			}
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", core.NewStreamError(core.ErrCodeEngineUnavailable, true,
			"configured engine binary not found: "+configured)
	}

	path, err := exec.LookPath(DefaultBinaryName)
	if err != nil {
		return "", core.NewStreamError(core.ErrCodeEngineUnavailable, true,
			"engine binary not found; configure a path or install "+DefaultBinaryName+" on PATH")
	}
	return path, nil
}
