// Package wolfram runs nearby-feature lookups through wolframscript.
package wolfram

import (
	"os"
	"os/exec"

	"github.com/samirrijal/formhunt/internal/core/domain"
)

// Locate returns the first candidate that exists as a regular file or
// resolves via PATH. It is meant to run once at startup: an engine installed
// later is not seen until the process restarts.
func Locate(candidates []string) domain.EngineStatus {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return domain.EngineStatus{Available: true, Path: c}
		}
		if p, err := exec.LookPath(c); err == nil {
			return domain.EngineStatus{Available: true, Path: p}
		}
	}
	return domain.EngineStatus{}
}
