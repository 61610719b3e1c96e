package solverlog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// reportPlaceholder is what the solver prints in a report column at
// iterations where the report has no sample yet.
const reportPlaceholder = "---"

var (
	// timeStepPattern matches the physical-time markers the solver
	// emits between iteration blocks, e.g. "TimeStep 12: Time 3.5e-02".
	timeStepPattern = regexp.MustCompile(`^TimeStep\s+\d+:\s+Time\s+([\d.eE+-]+)`)

	// headerSplit separates header columns, which the solver pads with
	// at least two spaces. Single spaces can occur inside column names.
	headerSplit = regexp.MustCompile(`\s{2,}`)
)

// residualSet indexes ResidualFields for header matching.
var residualSet = func() map[string]bool {
	m := make(map[string]bool, len(ResidualFields))
	for _, f := range ResidualFields {
		m[f] = true
	}
	return m
}()

// Parser extracts aligned iteration, residual and report series from a
// solver log. A Parser is stateless between calls: each Parse is a
// single forward pass over the full input, so re-parsing a still-growing
// log from the start every poll cycle is the intended usage.
type Parser struct {
	reportFields []string
}

// NewParser creates a parser. reportFields is the ordered set of report
// columns to extract; the first entry is the gating field that decides
// whether a row yields a report sample. An empty set disables report
// extraction entirely.
func NewParser(reportFields []string) *Parser {
	return &Parser{reportFields: reportFields}
}

// scanState is the per-pass parser state. Column layouts are only valid
// until the next recognized header line; a header that matches no fields
// of a kind leaves that layout untouched rather than clearing it.
type scanState struct {
	currentTime  float64
	headerSeen   bool
	dataStarted  bool
	residualCols map[string]int
	reportCols   map[string]int
}

// Parse scans the log line by line and returns the aligned series.
// Malformed rows and tokens degrade to NaN or are skipped; only a read
// error on the underlying reader is returned as an error, and even then
// the Result is non-nil and empty.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	res := newResult(p.reportFields)
	st := &scanState{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	for sc.Scan() {
		p.consumeLine(sc.Text(), st, res)
	}
	if err := sc.Err(); err != nil {
		return newResult(p.reportFields), fmt.Errorf("reading log: %w", err)
	}

	res.reconcile()
	return res, nil
}

// ParseFile parses the log at path. A missing or unreadable file is not
// fatal to a poll cycle: the returned Result is empty but usable, and
// the error describes what went wrong so the caller can log it.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return newResult(p.reportFields), fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		return newResult(p.reportFields), fmt.Errorf("parsing log file %s: %w", path, err)
	}
	return res, nil
}

// consumeLine classifies one raw line and folds it into the result.
func (p *Parser) consumeLine(raw string, st *scanState, res *Result) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	// Time-step markers carry the physical time for all rows until the
	// next marker, and signal that iteration data has started.
	if m := timeStepPattern.FindStringSubmatch(line); m != nil {
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return
		}
		st.currentTime = t
		st.dataStarted = true
		return
	}

	if p.isHeader(line) {
		p.applyHeader(line, st)
		return
	}

	// Data rows start with leading whitespace or a digit, and only
	// count once both a header and a time marker have been seen.
	if !st.headerSeen || !st.dataStarted {
		return
	}
	if raw[0] != ' ' && raw[0] != '\t' && !isDigit(line[0]) {
		return
	}

	p.consumeRow(line, st, res)
}

// isHeader detects a column header line by content, not position. When
// report fields are requested, a header only counts if at least one of
// them appears somewhere in the line; a header that merely resembles a
// requested name still matches here but binds no report column.
func (p *Parser) isHeader(line string) bool {
	if !strings.HasPrefix(line, "Iteration") || !strings.Contains(line, "Continuity") {
		return false
	}
	if len(p.reportFields) == 0 {
		return true
	}
	for _, f := range p.reportFields {
		if strings.Contains(line, f) {
			return true
		}
	}
	return false
}

// applyHeader derives fresh column layouts from a header line. Each of
// the two layouts is replaced only when the header matched at least one
// field of that kind; a zero-match layout survives unchanged.
func (p *Parser) applyHeader(line string, st *scanState) {
	st.headerSeen = true

	var cols []string
	for _, h := range headerSplit.Split(line, -1) {
		if h = strings.TrimSpace(h); h != "" {
			cols = append(cols, h)
		}
	}

	resCols := make(map[string]int)
	repCols := make(map[string]int)
	for i, h := range cols {
		switch {
		case residualSet[h]:
			resCols[h] = i
		case p.isReportField(h):
			repCols[h] = i
		}
	}
	if len(resCols) > 0 {
		st.residualCols = resCols
	}
	if len(repCols) > 0 {
		st.reportCols = repCols
	}
}

func (p *Parser) isReportField(name string) bool {
	for _, f := range p.reportFields {
		if f == name {
			return true
		}
	}
	return false
}

// consumeRow parses one data row. A non-integer first token drops the
// whole line; any other malformed or out-of-range token degrades that
// single field to NaN. The length invariant is re-enforced afterwards.
func (p *Parser) consumeRow(line string, st *scanState, res *Result) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || !isInteger(tokens[0]) {
		return
	}
	iter, err := strconv.Atoi(tokens[0])
	if err != nil {
		return
	}
	res.Iterations = append(res.Iterations, iter)

	for name, idx := range st.residualCols {
		res.Residuals[name] = append(res.Residuals[name], tokenFloat(tokens, idx))
	}

	// A report sample exists only when the gating field (the first
	// requested report column) has a real value on this row.
	if len(p.reportFields) > 0 {
		gate, ok := st.reportCols[p.reportFields[0]]
		if ok && gate < len(tokens) && tokens[gate] != reportPlaceholder && tokens[gate] != "" {
			res.ReportIterations = append(res.ReportIterations, iter)
			res.ReportTimes = append(res.ReportTimes, st.currentTime)
			for name, idx := range st.reportCols {
				res.Reports[name] = append(res.Reports[name], tokenFloat(tokens, idx))
			}
		}
	}

	res.reconcileRow()
}

// tokenFloat reads tokens[idx] as a float, degrading an out-of-range
// index or unparsable token to NaN.
func tokenFloat(tokens []string, idx int) float64 {
	if idx < 0 || idx >= len(tokens) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(tokens[idx], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isInteger reports whether s is a non-negative decimal integer.
func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
