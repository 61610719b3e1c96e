package output

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/cfdtools/starwatch/pkg/solverlog"
)

// TextFormatter formats summaries as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the summary as text.
func (f *TextFormatter) Format(_ context.Context, s *Summary, w io.Writer) error {
	if f.opts.Quiet {
		fmt.Fprintf(w, "starwatch: %d iterations, %d report samples\n",
			s.Iterations, s.ReportSamples)
		return nil
	}

	fmt.Fprintf(w, "=== Convergence Summary: %s ===\n\n", s.Source)

	if !s.HasData() {
		fmt.Fprintln(w, "No iteration data found")
		return nil
	}

	fmt.Fprintf(w, "Iterations: %d (%d - %d)\n",
		s.Iterations, s.FirstIteration, s.LastIteration)

	if len(s.Residuals) > 0 {
		fmt.Fprintln(w, "\nLatest residuals:")
		// Keep the solver's column order rather than map order.
		for _, name := range solverlog.ResidualFields {
			if v, ok := s.Residuals[name]; ok {
				fmt.Fprintf(w, "  %-14s %.6e\n", name, v)
			}
		}
	}

	if s.ReportSamples > 0 {
		fmt.Fprintf(w, "\nReport samples: %d (last at t=%g s)\n", s.ReportSamples, s.LastTime)
		for _, name := range sortedKeys(s.Reports) {
			fmt.Fprintf(w, "  %-14s %.4f\n", name, s.Reports[name])
		}
	}

	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
