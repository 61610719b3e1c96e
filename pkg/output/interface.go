package output

import (
	"context"
	"io"
)

// Formatter renders a convergence summary in a specific format.
type Formatter interface {
	// Format renders the summary to the given writer.
	Format(ctx context.Context, summary *Summary, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Quiet enables minimal one-line output.
	Quiet bool
}
