package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/vk/critgridgo/internal/search"
)

// WriteIterationTable renders the search history as an aligned text table.
func WriteIterationTable(w io.Writer, parameter string, iterations []search.Iteration) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ITER\t%s\tKEFF\tSTDDEV\n", parameter)
	for _, it := range iterations {
		fmt.Fprintf(tw, "%d\t%.6g\t%.5f\t%.5f\n", it.N, it.Guess, it.Keff, it.StdDev)
	}
	return tw.Flush()
}

// WriteIterations writes iterations.txt into dir.
func WriteIterations(dir, parameter string, iterations []search.Iteration) error {
	f, err := os.Create(filepath.Join(dir, IterationsFile))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", IterationsFile, err)
	}
	defer f.Close()
	if err := WriteIterationTable(f, parameter, iterations); err != nil {
		return fmt.Errorf("failed to write %s: %w", IterationsFile, err)
	}
	return nil
}
