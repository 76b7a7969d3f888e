package solver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/ctxlog"
)

// crossSectionsEnv points the solver at its nuclear data library.
const crossSectionsEnv = "OPENMC_CROSS_SECTIONS"

// OpenMC runs an OpenMC-compatible solver executable.
type OpenMC struct {
	Executable    string
	CrossSections string
	ExtraArgs     []string
	Timeout       time.Duration
}

// NewOpenMC builds a runner from the case's solver configuration.
func NewOpenMC(cfg *config.Solver) *OpenMC {
	return &OpenMC{
		Executable:    cfg.Executable,
		CrossSections: cfg.CrossSections,
		ExtraArgs:     cfg.ExtraArgs,
		Timeout:       cfg.Timeout,
	}
}

// Run executes the solver in caseDir and parses the eigenvalue from its
// standard output. A non-zero exit carries the tail of stderr in the error.
func (o *OpenMC) Run(ctx context.Context, caseDir string) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("executable", o.Executable, "dir", caseDir)

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, o.Executable, o.ExtraArgs...)
	cmd.Dir = caseDir
	cmd.Env = os.Environ()
	if o.CrossSections != "" {
		cmd.Env = append(cmd.Env, crossSectionsEnv+"="+o.CrossSections)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Solver starting.")
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("solver run in '%s' aborted: %w", caseDir, ctx.Err())
	}
	if err != nil {
		return Result{}, fmt.Errorf("solver failed in '%s': %w\n%s", caseDir, err, tail(stderr.String(), 12))
	}

	result, err := ParseOutput(&stdout)
	if err != nil {
		return Result{}, fmt.Errorf("solver output in '%s' unusable: %w", caseDir, err)
	}
	result.Duration = elapsed

	for _, warning := range result.Warnings {
		logger.Warn("Solver warning.", "message", warning)
	}
	logger.Debug("Solver finished.", "keff", result.Keff, "stddev", result.StdDev, "duration", elapsed)
	return result, nil
}

// tail returns the last n lines of s, for error reporting.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
