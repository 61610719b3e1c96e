// Package output provides formatting for parsed convergence summaries.
package output

import (
	"math"
	"time"

	"github.com/cfdtools/starwatch/pkg/solverlog"
)

// Summary is the convergence state extracted from one parse of a
// solver log, in a form suitable for terminal or JSON output.
type Summary struct {
	// Source is the log file path that was parsed.
	Source string `json:"source"`

	// Iterations is the number of iteration rows parsed.
	Iterations int `json:"iterations"`

	// FirstIteration and LastIteration bound the parsed range.
	FirstIteration int `json:"first_iteration,omitempty"`
	LastIteration  int `json:"last_iteration,omitempty"`

	// Residuals holds the most recent value of each residual field
	// that carried any data. NaN-only fields are omitted.
	Residuals map[string]float64 `json:"residuals,omitempty"`

	// ReportSamples is the number of report samples taken.
	ReportSamples int `json:"report_samples"`

	// LastTime is the physical time of the last report sample.
	LastTime float64 `json:"last_time,omitempty"`

	// Reports holds the most recent value of each requested report
	// field that carried any data.
	Reports map[string]float64 `json:"reports,omitempty"`

	// ParsedAt is when the summary was generated.
	ParsedAt time.Time `json:"parsed_at"`
}

// NewSummary builds a Summary from a parse result.
func NewSummary(res *solverlog.Result, source string) *Summary {
	s := &Summary{
		Source:        source,
		Iterations:    len(res.Iterations),
		ReportSamples: len(res.ReportIterations),
		Residuals:     lastValues(res.Residuals),
		Reports:       lastValues(res.Reports),
		ParsedAt:      time.Now(),
	}

	if len(res.Iterations) > 0 {
		s.FirstIteration = res.Iterations[0]
		s.LastIteration = res.Iterations[len(res.Iterations)-1]
	}
	if len(res.ReportTimes) > 0 {
		s.LastTime = res.ReportTimes[len(res.ReportTimes)-1]
	}

	return s
}

// HasData returns true if the parse produced any iteration data.
func (s *Summary) HasData() bool {
	return s.Iterations > 0 || s.ReportSamples > 0
}

// lastValues picks the trailing non-NaN value of each series, skipping
// series that never carried data.
func lastValues(series map[string][]float64) map[string]float64 {
	out := make(map[string]float64)
	for name, values := range series {
		for i := len(values) - 1; i >= 0; i-- {
			if !math.IsNaN(values[i]) {
				out[name] = values[i]
				break
			}
		}
	}
	return out
}
