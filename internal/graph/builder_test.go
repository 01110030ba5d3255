package graph

import (
	"reflect"
	"strings"
	"testing"

	"pcbfuse/internal/diag"
	"pcbfuse/internal/normalize"
)

func scenarioRecords() ([]normalize.ComponentRecord, []normalize.PlacementRecord, []normalize.PinRecord) {
	bom := []normalize.ComponentRecord{
		{Key: "C1", Designator: "C1", Value: "100nF", Footprint: "0402", Attributes: map[string]string{}},
	}
	placements := []normalize.PlacementRecord{
		{Key: "C1", Designator: "C1", X: 10.0, Y: 5.0, HasPosition: true, Rotation: 90, HasRotation: true, Layer: "T", Side: "top"},
	}
	pins := []normalize.PinRecord{
		{Key: "C1", Designator: "C1", Pin: "1", Net: "GND"},
		{Key: "C1", Designator: "C1", Pin: "2", Net: "3V3"},
	}
	return bom, placements, pins
}

func TestBuildMergesAllThreeSources(t *testing.T) {
	bom, placements, pins := scenarioRecords()

	diags := diag.NewList()
	d := Build(bom, placements, pins, diags)

	c1, ok := d.Components["C1"]
	if !ok {
		t.Fatal("C1 missing from graph")
	}
	if c1.Value != "100nF" || c1.Footprint != "0402" {
		t.Errorf("C1 BOM fields = %q/%q", c1.Value, c1.Footprint)
	}
	if !c1.Placement.HasPosition || c1.Placement.X != 10.0 || c1.Placement.Y != 5.0 {
		t.Errorf("C1 placement = %+v", c1.Placement)
	}
	if c1.Placement.Rotation != 90 {
		t.Errorf("C1 rotation = %v", c1.Placement.Rotation)
	}
	if c1.Pins["1"] != "GND" || c1.Pins["2"] != "3V3" {
		t.Errorf("C1 pins = %v", c1.Pins)
	}
	if !c1.InBOM || !c1.InPlacement || !c1.InNetlist {
		t.Errorf("C1 source flags = %v/%v/%v", c1.InBOM, c1.InPlacement, c1.InNetlist)
	}

	gnd := d.Nets["GND"]
	if gnd == nil || gnd.PinCount != 1 || gnd.Pins[0].String() != "C1.1" {
		t.Errorf("GND = %+v", gnd)
	}
	if diags.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestBuildPlacementOnlyStub(t *testing.T) {
	placements := []normalize.PlacementRecord{
		{Key: "R99", Designator: "R99", X: 1, Y: 2, HasPosition: true},
	}

	diags := diag.NewList()
	d := Build(nil, placements, nil, diags)

	stub, ok := d.Components["R99"]
	if !ok {
		t.Fatal("stub R99 missing")
	}
	if stub.InBOM {
		t.Error("stub should not be flagged as BOM-sourced")
	}
	if stub.Value != "" || stub.Footprint != "" {
		t.Errorf("stub carries BOM data: %+v", stub)
	}
	if !stub.Placement.HasPosition {
		t.Error("stub placement lost")
	}

	found := false
	for _, item := range diags.Items() {
		if strings.Contains(item.Message, "no BOM entry for R99") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing diagnostic, got %v", diags.Items())
	}
}

func TestBuildFlagsMissingPlacement(t *testing.T) {
	bom := []normalize.ComponentRecord{
		{Key: "C1", Designator: "C1", Value: "100nF", Attributes: map[string]string{}},
		{Key: "U2", Designator: "U2", Value: "LM358", Attributes: map[string]string{}},
	}
	placements := []normalize.PlacementRecord{
		{Key: "C1", Designator: "C1", X: 1, Y: 2, HasPosition: true},
	}

	diags := diag.NewList()
	d := Build(bom, placements, nil, diags)

	u2 := d.Components["U2"]
	if u2 == nil || u2.InPlacement {
		t.Fatalf("U2 = %+v, want merged without placement", u2)
	}

	found := false
	for _, item := range diags.Items() {
		if strings.Contains(item.Message, "no placement for U2") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing diagnostic, got %v", diags.Items())
	}
	for _, item := range diags.Items() {
		if strings.Contains(item.Message, "no placement for C1") {
			t.Errorf("C1 has a placement row and must not be flagged: %v", item)
		}
	}
}

func TestBuildNetlistOnlyStub(t *testing.T) {
	pins := []normalize.PinRecord{
		{Key: "U9", Designator: "U9", Pin: "3", Net: "SCL"},
	}

	diags := diag.NewList()
	d := Build(nil, nil, pins, diags)

	if _, ok := d.Components["U9"]; !ok {
		t.Fatal("stub U9 missing")
	}
	if len(d.Verify()) != 0 {
		t.Errorf("dangling pins after stub creation: %v", d.Verify())
	}

	found := false
	for _, item := range diags.Items() {
		if strings.Contains(item.Message, "U9 referenced only in netlist") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing diagnostic, got %v", diags.Items())
	}
}

func TestBuildDeterministic(t *testing.T) {
	bom, placements, pins := scenarioRecords()

	a := Build(bom, placements, pins, diag.NewList())
	b := Build(bom, placements, pins, diag.NewList())

	if !reflect.DeepEqual(a.Connectivity(), b.Connectivity()) {
		t.Error("connectivity differs between identical builds")
	}
	if !reflect.DeepEqual(a.ComponentKeys(), b.ComponentKeys()) {
		t.Error("component ordering differs between identical builds")
	}
}

func TestBoardEstimate(t *testing.T) {
	placements := []normalize.PlacementRecord{
		{Key: "C1", Designator: "C1", X: 0, Y: 0, HasPosition: true},
		{Key: "C2", Designator: "C2", X: 20, Y: 10, HasPosition: true},
		{Key: "C3", Designator: "C3"},
	}

	d := Build(nil, placements, nil, diag.NewList())
	if !d.Board.Valid {
		t.Fatal("board estimate should be valid")
	}
	if d.Board.Width != 30 || d.Board.Height != 20 {
		t.Errorf("board = %+v, want 30x20 with margin", d.Board)
	}
}

func TestBoardEstimateNoPositions(t *testing.T) {
	placements := []normalize.PlacementRecord{{Key: "C1", Designator: "C1"}}
	d := Build(nil, placements, nil, diag.NewList())
	if d.Board.Valid {
		t.Error("board estimate should be invalid without positions")
	}
}

func TestClone(t *testing.T) {
	bom, placements, pins := scenarioRecords()
	d := Build(bom, placements, pins, diag.NewList())

	c := d.Clone()
	c.Components["C1"].Value = "changed"
	c.Components["C1"].Pins["1"] = "other"
	c.Nets["GND"].Pins[0].Number = "9"
	c.Precision = 0

	if d.Components["C1"].Value != "100nF" {
		t.Error("clone shares component data")
	}
	if d.Components["C1"].Pins["1"] != "GND" {
		t.Error("clone shares pin map")
	}
	if d.Nets["GND"].Pins[0].Number != "1" {
		t.Error("clone shares net pin slice")
	}
	if d.Precision != 3 {
		t.Error("clone shares precision")
	}
}
