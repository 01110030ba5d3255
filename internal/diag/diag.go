// Package diag provides the diagnostics accumulator threaded through
// every pipeline stage. Stages append, never print; the CLI surfaces
// the collected diagnostics on stderr after the output is written.
package diag

import (
	"fmt"
	"sort"
)

// Severity classifies a diagnostic
type Severity string

const (
	// SeverityError for recoverable errors that degraded the result
	SeverityError Severity = "error"
	// SeverityWarning for data anomalies that were worked around
	SeverityWarning Severity = "warning"
	// SeverityInfo for notable but harmless observations
	SeverityInfo Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityError:   1,
	SeverityWarning: 2,
	SeverityInfo:    3,
}

// Rank returns the ordering priority for a severity.
// Unknown severities sort last.
func Rank(s Severity) int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank) + 1
}

// Diagnostic is a single recoverable issue observed during processing
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Stage    string   `json:"stage"`
	Message  string   `json:"message"`
}

// List accumulates diagnostics across pipeline stages
type List struct {
	items []Diagnostic
}

// NewList creates an empty diagnostics accumulator
func NewList() *List {
	return &List{}
}

// Add appends a diagnostic
func (l *List) Add(severity Severity, stage, format string, args ...interface{}) {
	l.items = append(l.items, Diagnostic{
		Severity: severity,
		Stage:    stage,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf appends a warning diagnostic
func (l *List) Warnf(stage, format string, args ...interface{}) {
	l.Add(SeverityWarning, stage, format, args...)
}

// Errorf appends a recoverable-error diagnostic
func (l *List) Errorf(stage, format string, args ...interface{}) {
	l.Add(SeverityError, stage, format, args...)
}

// Infof appends an informational diagnostic
func (l *List) Infof(stage, format string, args ...interface{}) {
	l.Add(SeverityInfo, stage, format, args...)
}

// Merge appends all diagnostics from another list
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.items = append(l.items, other.items...)
}

// Len returns the number of accumulated diagnostics
func (l *List) Len() int {
	return len(l.items)
}

// Items returns diagnostics ordered by severity, then stage, then
// message, so repeated runs surface them identically.
func (l *List) Items() []Diagnostic {
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	sort.SliceStable(out, func(i, j int) bool {
		if Rank(out[i].Severity) != Rank(out[j].Severity) {
			return Rank(out[i].Severity) < Rank(out[j].Severity)
		}
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
