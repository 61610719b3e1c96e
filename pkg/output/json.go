package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats summaries as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the summary as JSON.
func (f *JSONFormatter) Format(_ context.Context, s *Summary, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(struct {
			Iterations    int `json:"iterations"`
			ReportSamples int `json:"report_samples"`
		}{s.Iterations, s.ReportSamples})
	}

	return encoder.Encode(s)
}
