package main

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"pcbfuse/internal/compact"
	"pcbfuse/internal/diag"
	"pcbfuse/internal/errors"
	"pcbfuse/internal/graph"
	"pcbfuse/internal/output"
	"pcbfuse/internal/tokens"
)

func writeFixtures(t *testing.T) (bom, placement, netlist string) {
	t.Helper()
	dir := t.TempDir()

	bom = filepath.Join(dir, "bom.csv")
	writeFile(t, bom, `Designator,Value,Footprint,Manufacturer Part
"C1,C2",100nF,0402,CL05B104KO5NNNC
R1,10k,0402,RC0402FR-0710KL
U1,STM32F103,LQFP48,STM32F103C8T6
`)

	placement = filepath.Join(dir, "pnp.csv")
	writeFile(t, placement, `Designator,Mid X,Mid Y,Rotation,Layer
C1,10.000mm,5.000mm,90,T
C2,12.000mm,5.000mm,90,T
R1,20.000mm,8.000mm,0,B
U1,15.000mm,15.000mm,0,T
R99,30.000mm,2.000mm,0,T
`)

	netlist = filepath.Join(dir, "board.net")
	writeFile(t, netlist, `# exported netlist
NET GND C1.1 C2.1 R1.2 U1.8
NET 3V3 C1.2 C2.2 U1.9
NET SIG R1.1 U1.10
`)
	return bom, placement, netlist
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestBuildDesignEndToEnd(t *testing.T) {
	bom, placement, netlist := writeFixtures(t)
	diags := diag.NewList()

	design, err := buildDesign(bom, placement, netlist, diags)
	if err != nil {
		t.Fatalf("buildDesign: %v", err)
	}

	c1 := design.Components["C1"]
	if c1 == nil {
		t.Fatal("C1 missing from graph")
	}
	if c1.Value != "100nF" || !c1.Placement.HasPosition || c1.Placement.X != 10.0 {
		t.Errorf("C1 merge incomplete: %+v", c1)
	}
	if c1.Pins["1"] != "GND" || c1.Pins["2"] != "3V3" {
		t.Errorf("C1 pins = %v", c1.Pins)
	}

	// Placement-only designator gets a stub and a diagnostic
	if _, ok := design.Components["R99"]; !ok {
		t.Error("stub for R99 missing")
	}
	found := false
	for _, d := range diags.Items() {
		if d.Stage == "merge" && d.Message == "no BOM entry for R99" {
			found = true
		}
	}
	if !found {
		t.Error("missing 'no BOM entry for R99' diagnostic")
	}

	if dangling := design.Verify(); len(dangling) != 0 {
		t.Errorf("dangling pins: %v", dangling)
	}
}

func TestPipelineProducesReparsableYAML(t *testing.T) {
	bom, placement, netlist := writeFixtures(t)
	diags := diag.NewList()

	design, err := buildDesign(bom, placement, netlist, diags)
	if err != nil {
		t.Fatalf("buildDesign: %v", err)
	}

	opts := compact.Options{BusNetThreshold: 16, PinSampleCap: 8, MinElisionClass: 2}
	measure := func(d *graph.Design) (string, error) {
		data, err := output.Encode(d, nil)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	res, err := compact.Run(design, 100000, tokens.NewHeuristic(), measure, opts, diags)
	if err != nil {
		t.Fatalf("compact.Run: %v", err)
	}
	if !res.BudgetMet {
		t.Error("small fixture should fit a 100k budget untouched")
	}

	data, err := output.Encode(res.Design, &output.Report{TokenLimit: 100000, Tokens: res.Tokens, BudgetMet: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "out.yaml")
	written, err := output.Write(outPath, data, false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("output is not generic YAML: %v", err)
	}
	nets := doc["nets"].(map[string]interface{})
	gnd := nets["GND"].([]interface{})
	if len(gnd) != 4 {
		t.Errorf("GND lists %d pins, want 4", len(gnd))
	}
}

func TestEncodeFinalCountsEmittedDocument(t *testing.T) {
	bom, placement, netlist := writeFixtures(t)
	diags := diag.NewList()
	design, err := buildDesign(bom, placement, netlist, diags)
	if err != nil {
		t.Fatalf("buildDesign: %v", err)
	}

	counter := tokens.NewHeuristic()
	bare, err := output.Encode(design, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// A budget the report-free measurement meets but the emitted
	// document, report section included, exceeds.
	limit := counter.Count(string(bare)) + 1

	report := &output.Report{TokenLimit: limit, Tokens: counter.Count(string(bare)), BudgetMet: true}
	data, err := encodeFinal(design, report, counter, diags)
	if err != nil {
		t.Fatalf("encodeFinal: %v", err)
	}

	if report.BudgetMet {
		t.Errorf("BudgetMet stayed true with %d tokens over the %d limit", report.Tokens, limit)
	}
	if report.Tokens <= limit {
		t.Errorf("reconciled tokens = %d, want over %d", report.Tokens, limit)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	reduction := doc["metadata"].(map[string]interface{})["reduction"].(map[string]interface{})
	if reduction["budget_met"] != false {
		t.Errorf("embedded budget_met = %v, want false", reduction["budget_met"])
	}

	warned := false
	for _, d := range diags.Items() {
		if d.Stage == "compact" {
			warned = true
		}
	}
	if !warned {
		t.Error("missing budget warning diagnostic")
	}
}

func TestEncodeFinalKeepsMetBudget(t *testing.T) {
	bom, placement, netlist := writeFixtures(t)
	diags := diag.NewList()
	design, err := buildDesign(bom, placement, netlist, diags)
	if err != nil {
		t.Fatalf("buildDesign: %v", err)
	}

	counter := tokens.NewHeuristic()
	report := &output.Report{TokenLimit: 100000, Tokens: 1, BudgetMet: true}
	data, err := encodeFinal(design, report, counter, diags)
	if err != nil {
		t.Fatalf("encodeFinal: %v", err)
	}
	if !report.BudgetMet {
		t.Error("generous budget reported as not met")
	}
	if report.Tokens != counter.Count(string(data)) {
		t.Errorf("report tokens = %d, emitted document counts %d",
			report.Tokens, counter.Count(string(data)))
	}
	for _, d := range diags.Items() {
		if d.Stage == "compact" {
			t.Errorf("unexpected budget diagnostic: %v", d)
		}
	}
}

func TestForcedLevelReportsBudgetHonestly(t *testing.T) {
	bom, placement, netlist := writeFixtures(t)
	outPath := filepath.Join(t.TempDir(), "out.yaml")

	fuseLevel = 2
	fuseOutput = outPath
	fuseTokenLimit = 10
	defer func() {
		fuseLevel = 0
		fuseOutput = ""
		fuseTokenLimit = 0
	}()

	if err := runFuse(fuseCmd, []string{bom, placement, netlist}); err != nil {
		t.Fatalf("runFuse: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	reduction := doc["metadata"].(map[string]interface{})["reduction"].(map[string]interface{})
	if reduction["budget_met"] != false {
		t.Errorf("budget_met = %v, want false at a 10-token limit", reduction["budget_met"])
	}
	if reduction["level"] != 2 {
		t.Errorf("level = %v, want 2", reduction["level"])
	}
}

func TestBuildDesignMissingFile(t *testing.T) {
	bom, placement, _ := writeFixtures(t)
	_, err := buildDesign(bom, placement, filepath.Join(t.TempDir(), "absent.net"), diag.NewList())
	if err == nil {
		t.Fatal("expected error for missing netlist")
	}
	if errors.CodeOf(err) != errors.InputMissing {
		t.Errorf("code = %v, want %v", errors.CodeOf(err), errors.InputMissing)
	}
	if !errors.IsTerminal(err) {
		t.Error("missing input must be terminal")
	}
}

func TestBuildDesignEmptyBOM(t *testing.T) {
	dir := t.TempDir()
	bom := filepath.Join(dir, "bom.csv")
	writeFile(t, bom, "Designator,Value\n")
	_, placement, netlist := writeFixtures(t)

	_, err := buildDesign(bom, placement, netlist, diag.NewList())
	if err == nil {
		t.Fatal("expected error for empty BOM")
	}
	if errors.CodeOf(err) != errors.InputEmpty {
		t.Errorf("code = %v, want %v", errors.CodeOf(err), errors.InputEmpty)
	}
}

func TestMissingColumns(t *testing.T) {
	header := []string{"Designator", "Value", "Footprint", "Manufacturer"}
	if got := missingColumns(header, requiredColumns); len(got) != 0 {
		t.Errorf("missing = %v, want none", got)
	}
	got := missingColumns(header, enhancedColumns)
	if len(got) != 2 {
		t.Errorf("missing enhanced = %v, want manufacturer part and supplier part", got)
	}
}

func TestPopulatedCell(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"100nF", true},
		{"", false},
		{"  ", false},
		{"nan", false},
		{"NaN", false},
		{"none", false},
		{"0", true},
	}
	for _, tt := range tests {
		if got := populatedCell(tt.cell); got != tt.want {
			t.Errorf("populatedCell(%q) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}
