// Package compact shrinks a design's serialized size to a token budget
// through strictly ordered reduction passes. Verbosity is the only
// thing sacrificed: connectivity survives every pass.
package compact

import (
	"fmt"

	"pcbfuse/internal/diag"
	"pcbfuse/internal/graph"
	"pcbfuse/internal/tokens"
)

// Measure serializes a design exactly the way the final writer will,
// so token counts reflect real output. Supplied by the caller to keep
// this package free of serialization concerns.
type Measure func(*graph.Design) (string, error)

// Options tunes the reduction passes
type Options struct {
	// BusNetThreshold is the pin count at or above which a net may be
	// summarized
	BusNetThreshold int
	// PinSampleCap is how many pins a summarized net retains
	PinSampleCap int
	// MinElisionClass is the smallest component class the last-resort
	// pass will fold into a count summary
	MinElisionClass int
	// Ranker selects elidable components; nil means CommonValueRanker
	Ranker Ranker
}

// AppliedStep records one reduction step that changed the design
type AppliedStep struct {
	Pass   string `json:"pass"`
	Detail string `json:"detail"`
	Tokens int    `json:"tokens"`
}

// Result carries the possibly-reduced design and what it took
type Result struct {
	Design    *graph.Design
	Applied   []AppliedStep
	Tokens    int
	BudgetMet bool
	// Level is the highest pass category applied: 0 none, 1 attribute
	// thinning, 2 precision, 3 net summarization, 4 elision
	Level int
}

// step is one entry of the ordered reduction plan
type step struct {
	pass   string
	detail string
	level  int
	apply  func(*graph.Design) bool
}

func plan(opts Options) []step {
	ranker := opts.Ranker
	if ranker == nil {
		ranker = CommonValueRanker{}
	}

	steps := []step{
		{"attributes", "extra columns", 1, func(d *graph.Design) bool { return thinAttributes(d, tierExtras) }},
		{"attributes", "supplier part", 1, func(d *graph.Design) bool { return thinAttributes(d, tierSupplier) }},
		{"attributes", "manufacturer", 1, func(d *graph.Design) bool { return thinAttributes(d, tierManufacturer) }},
		{"attributes", "comment", 1, func(d *graph.Design) bool { return thinAttributes(d, tierComment) }},
	}

	for _, decimals := range []int{2, 1, 0} {
		dec := decimals
		steps = append(steps, step{
			"precision", fmt.Sprintf("%d decimals", dec), 2,
			func(d *graph.Design) bool { return reducePrecision(d, dec) },
		})
	}

	steps = append(steps, step{
		"nets", fmt.Sprintf("summarize >= %d pins", opts.BusNetThreshold), 3,
		func(d *graph.Design) bool { return summarizeNets(d, opts.BusNetThreshold, opts.PinSampleCap) },
	})

	for _, minClass := range elisionThresholds(opts.MinElisionClass) {
		mc := minClass
		steps = append(steps, step{
			"elision", fmt.Sprintf("classes >= %d", mc), 4,
			func(d *graph.Design) bool { return elide(d, mc, ranker) },
		})
	}

	return steps
}

// elisionThresholds yields decreasing class-size cutoffs so the pass
// folds the biggest classes first and only reaches small ones when the
// budget still is not met.
func elisionThresholds(minClass int) []int {
	if minClass < 2 {
		minClass = 2
	}
	var out []int
	for _, t := range []int{8, 4, 2} {
		if t >= minClass {
			out = append(out, t)
		}
	}
	if len(out) == 0 || out[len(out)-1] != minClass {
		out = append(out, minClass)
	}
	return out
}

// Run reduces the design until its serialized form fits the budget.
// The original design is never mutated; if it already fits, it is
// returned unchanged. When even full reduction cannot meet the budget
// the maximally reduced design is returned with BudgetMet false and a
// diagnostic, not an error. The counter is consulted once per applied
// step, keeping recount cost linear in the number of passes.
func Run(d *graph.Design, budget int, counter tokens.Counter, measure Measure, opts Options, diags *diag.List) (*Result, error) {
	text, err := measure(d)
	if err != nil {
		return nil, err
	}
	count := counter.Count(text)

	result := &Result{Design: d, Tokens: count, BudgetMet: true}
	if budget <= 0 || count <= budget {
		return result, nil
	}

	working := d.Clone()
	for _, s := range plan(opts) {
		if !s.apply(working) {
			continue
		}
		text, err = measure(working)
		if err != nil {
			return nil, err
		}
		count = counter.Count(text)

		result.Applied = append(result.Applied, AppliedStep{Pass: s.pass, Detail: s.detail, Tokens: count})
		if s.level > result.Level {
			result.Level = s.level
		}
		if count <= budget {
			break
		}
	}

	result.Design = working
	result.Tokens = count
	result.BudgetMet = count <= budget
	if !result.BudgetMet {
		diags.Warnf("compact", "token budget not met: %d tokens remain after full reduction (budget %d)", count, budget)
	}
	return result, nil
}

// ForceLevel applies every pass up to and including the given category
// without consulting the token counter. Level 0 returns an untouched
// clone. Used by the CLI's fixed-level mode.
func ForceLevel(d *graph.Design, level int, opts Options) *graph.Design {
	working := d.Clone()
	for _, s := range plan(opts) {
		if s.level > level {
			break
		}
		s.apply(working)
	}
	return working
}
