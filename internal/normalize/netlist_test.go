package normalize

import (
	"testing"

	"pcbfuse/internal/diag"
	"pcbfuse/internal/errors"
	"pcbfuse/internal/source"
)

func TestPinsFromTextBlocks(t *testing.T) {
	nl := &source.Netlist{
		Path:   "design.net",
		Format: source.FormatText,
		Blocks: []source.NetBlock{
			{Name: "GND", Tokens: []string{"C1.1", "U1.4", "garbage"}},
			{Name: "3V3", Tokens: []string{"C1.2", "U1.1"}},
		},
	}

	diags := diag.NewList()
	records, err := Pins(nl, diags)
	if err != nil {
		t.Fatalf("Pins: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want 4 (malformed token skipped)", len(records))
	}
	if diags.Len() != 1 {
		t.Errorf("want one malformed-token warning, got %v", diags.Items())
	}

	// Sorted by key then pin
	if records[0].Key != "C1" || records[0].Pin != "1" || records[0].Net != "GND" {
		t.Errorf("first record = %+v", records[0])
	}
}

func TestPinsFromENet(t *testing.T) {
	nl := &source.Netlist{
		Path:   "design.enet",
		Format: source.FormatENet,
		Components: map[string]source.ENetComponent{
			"uid-1": {
				Props: map[string]interface{}{"Designator": "C1"},
				Pins:  map[string]interface{}{"1": "GND", "2": "3V3"},
			},
			"uid-2": {
				Props: map[string]interface{}{"Name": "U1"},
				Pins:  map[string]interface{}{"4": "GND", "7": ""},
			},
			"uid-3": {
				Props: map[string]interface{}{},
				Pins:  map[string]interface{}{"1": "GND"},
			},
		},
	}

	diags := diag.NewList()
	records, err := Pins(nl, diags)
	if err != nil {
		t.Fatalf("Pins: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want 4", len(records))
	}

	// uid-3 has no designator at all
	if diags.Len() != 1 {
		t.Errorf("want one missing-designator warning, got %v", diags.Items())
	}

	var unconnected *PinRecord
	for i := range records {
		if records[i].Key == "U1" && records[i].Pin == "7" {
			unconnected = &records[i]
		}
	}
	if unconnected == nil || unconnected.Net != "" {
		t.Errorf("U1.7 should be an explicit unconnected pin, got %+v", unconnected)
	}
}

func TestPinsConflictingNetKeepsFirst(t *testing.T) {
	nl := &source.Netlist{
		Path:   "design.net",
		Format: source.FormatText,
		Blocks: []source.NetBlock{
			{Name: "GND", Tokens: []string{"C1.1"}},
			{Name: "3V3", Tokens: []string{"C1.1"}},
		},
	}

	diags := diag.NewList()
	records, err := Pins(nl, diags)
	if err != nil {
		t.Fatalf("Pins: %v", err)
	}
	if len(records) != 1 || records[0].Net != "GND" {
		t.Errorf("records = %+v, want single GND membership", records)
	}
	if diags.Len() != 1 {
		t.Errorf("want conflict warning, got %v", diags.Items())
	}
}

func TestPinsAllMalformed(t *testing.T) {
	nl := &source.Netlist{
		Path:   "design.net",
		Format: source.FormatText,
		Blocks: []source.NetBlock{{Name: "GND", Tokens: []string{"x", "y."}}},
	}

	_, err := Pins(nl, diag.NewList())
	if errors.CodeOf(err) != errors.InputEmpty {
		t.Errorf("code = %s, want INPUT_EMPTY", errors.CodeOf(err))
	}
}

func TestSplitPinToken(t *testing.T) {
	tests := []struct {
		token      string
		designator string
		pin        string
		ok         bool
	}{
		{"C1.1", "C1", "1", true},
		{"U3.12", "U3", "12", true},
		{"X.Y1.2", "X.Y1", "2", true},
		{"noseparator", "", "", false},
		{".5", "", "", false},
		{"C1.", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			d, p, ok := SplitPinToken(tt.token)
			if d != tt.designator || p != tt.pin || ok != tt.ok {
				t.Errorf("SplitPinToken(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.token, d, p, ok, tt.designator, tt.pin, tt.ok)
			}
		})
	}
}
