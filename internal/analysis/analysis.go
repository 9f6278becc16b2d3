// Package analysis drives the external feature extractor.
//
// Feature extraction itself (decoding audio, computing the vector) is not
// euphony's concern: it is delegated to a configurable executable that
// receives a file path and prints a JSON result. The [Analyzer] interface
// keeps the rest of the core independent of how vectors are produced.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
)

// Result is a successful analysis of one song.
type Result struct {
	Features models.FeatureVector `json:"features"`
	Meta     models.Metadata      `json:"metadata"`
}

// Analyzer computes the feature vector and tag metadata for a media file.
// Implementations may be slow and may be called from multiple goroutines.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*Result, error)
}

// ExecAnalyzer shells out to an external analyzer command, passing the file
// path as the single argument and reading the result as JSON from stdout.
type ExecAnalyzer struct {
	Command string
}

var _ Analyzer = (*ExecAnalyzer)(nil)

// NewExecAnalyzer creates an ExecAnalyzer for the given executable.
func NewExecAnalyzer(command string) *ExecAnalyzer {
	return &ExecAnalyzer{Command: command}
}

// Analyze runs the analyzer command on one file. Any failure (spawn, non-zero
// exit, malformed output, wrong vector length) is an analysis error for that
// path only.
func (a *ExecAnalyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	if a.Command == "" {
		return nil, fmt.Errorf("%w: no analyzer command configured", shared.ErrAnalysis)
	}

	cmd := exec.CommandContext(ctx, a.Command, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%w: %s: %v: %s", shared.ErrAnalysis, path, err, detail)
		}
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrAnalysis, path, err)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("%w: %s: malformed analyzer output: %v", shared.ErrAnalysis, path, err)
	}
	if err := result.Features.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrAnalysis, path, err)
	}

	return &result, nil
}
