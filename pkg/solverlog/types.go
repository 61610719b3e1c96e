// Package solverlog extracts iteration and report time series from
// STAR-CCM+ solver log output.
package solverlog

import "math"

// ResidualFields is the fixed vocabulary of residual columns the solver
// prints. The parser always produces a series for each of them, padded
// with NaN where the log carries no value.
var ResidualFields = []string{
	"Continuity",
	"X-momentum",
	"Y-momentum",
	"Z-momentum",
	"Tke",
	"Sdr",
	"Intermittency",
}

// Result holds the aligned output of one parse pass.
//
// Iterations and every Residuals series are always the same length.
// ReportIterations, ReportTimes and every Reports series are always the
// same length as each other, but reports are sampled only at iterations
// where the gating field carries a real value, so they may be shorter.
type Result struct {
	// Iterations is the sequence of iteration numbers in file order.
	Iterations []int

	// Residuals maps each entry of ResidualFields to its value series.
	// Missing values are NaN.
	Residuals map[string][]float64

	// ReportIterations lists the iterations at which report samples
	// were taken.
	ReportIterations []int

	// ReportTimes lists the physical time of each report sample,
	// carried forward from the most recent TimeStep marker.
	ReportTimes []float64

	// Reports maps each requested report field to its value series.
	Reports map[string][]float64
}

// newResult returns an empty Result with all series allocated so that
// callers never see a nil map entry for a known field.
func newResult(reportFields []string) *Result {
	r := &Result{
		Residuals: make(map[string][]float64, len(ResidualFields)),
		Reports:   make(map[string][]float64, len(reportFields)),
	}
	for _, f := range ResidualFields {
		r.Residuals[f] = []float64{}
	}
	for _, f := range reportFields {
		r.Reports[f] = []float64{}
	}
	return r
}

// Empty reports whether the parse produced no data at all.
func (r *Result) Empty() bool {
	return len(r.Iterations) == 0 && len(r.ReportIterations) == 0
}

// LastIteration returns the final iteration number, or 0 if no
// iterations were parsed.
func (r *Result) LastIteration() int {
	if len(r.Iterations) == 0 {
		return 0
	}
	return r.Iterations[len(r.Iterations)-1]
}

// reconcileRow pads every residual series with NaN up to the current
// iteration count. Called after each data row so a malformed row cannot
// leave columns drifted against the iteration sequence.
func (r *Result) reconcileRow() {
	n := len(r.Iterations)
	for _, f := range ResidualFields {
		for len(r.Residuals[f]) < n {
			r.Residuals[f] = append(r.Residuals[f], math.NaN())
		}
	}
}

// reconcile enforces the final length invariant: every residual series
// ends at exactly len(Iterations), padded with NaN or truncated.
func (r *Result) reconcile() {
	n := len(r.Iterations)
	for _, f := range ResidualFields {
		for len(r.Residuals[f]) < n {
			r.Residuals[f] = append(r.Residuals[f], math.NaN())
		}
		if len(r.Residuals[f]) > n {
			r.Residuals[f] = r.Residuals[f][:n]
		}
	}
}
