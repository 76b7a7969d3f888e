package solver

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// The solver prints several eigenvalue estimators in its results block. The
// combined estimator is preferred; the track-length estimator is the
// fallback when the combined one is absent (single-batch debug runs).
var (
	combinedRe    = regexp.MustCompile(`Combined k-effective\s*=\s*([0-9.eE+-]+)\s*\+/-\s*([0-9.eE+-]+)`)
	trackLengthRe = regexp.MustCompile(`k-effective \(Track-length\)\s*=\s*([0-9.eE+-]+)\s*\+/-\s*([0-9.eE+-]+)`)
)

// ParseOutput scans solver stdout for the final eigenvalue and any warning
// lines. A missing eigenvalue is an error: it means the run never reached
// the results block.
func ParseOutput(r io.Reader) (Result, error) {
	var result Result
	var combined, trackLength *[2]float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if idx := strings.Index(line, "Warning:"); idx >= 0 {
			warning := strings.TrimSpace(line[idx+len("Warning:"):])
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
			continue
		}

		if m := combinedRe.FindStringSubmatch(line); m != nil {
			pair, err := parsePair(m[1], m[2])
			if err != nil {
				return Result{}, fmt.Errorf("malformed combined k-effective line %q: %w", line, err)
			}
			combined = pair
			continue
		}
		if m := trackLengthRe.FindStringSubmatch(line); m != nil {
			pair, err := parsePair(m[1], m[2])
			if err != nil {
				return Result{}, fmt.Errorf("malformed track-length k-effective line %q: %w", line, err)
			}
			trackLength = pair
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("failed to read solver output: %w", err)
	}

	switch {
	case combined != nil:
		result.Keff, result.StdDev = combined[0], combined[1]
	case trackLength != nil:
		result.Keff, result.StdDev = trackLength[0], trackLength[1]
	default:
		return Result{}, fmt.Errorf("no k-effective estimate found in solver output")
	}
	if result.Keff <= 0 {
		return Result{}, fmt.Errorf("non-physical k-effective %g in solver output", result.Keff)
	}
	return result, nil
}

func parsePair(value, stddev string) (*[2]float64, error) {
	k, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	s, err := strconv.ParseFloat(stddev, 64)
	if err != nil {
		return nil, err
	}
	return &[2]float64{k, s}, nil
}
