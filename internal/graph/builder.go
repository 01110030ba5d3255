package graph

import (
	"sort"

	"pcbfuse/internal/diag"
	"pcbfuse/internal/normalize"
)

// boardMargin is added around the component extent when estimating
// board dimensions, approximating the outline.
const boardMargin = 5.0

// defaultPrecision is the decimal places placement values start at
const defaultPrecision = 3

// Build merges the three normalized record streams into one unified
// design. Components come from the BOM first; placements fold in by
// designator; net records resolve last. A designator appearing only in
// a later source gets a stub component and a diagnostic, never a
// dropped record.
func Build(bom []normalize.ComponentRecord, placements []normalize.PlacementRecord, pins []normalize.PinRecord, diags *diag.List) *Design {
	d := &Design{
		Components: make(map[string]*Component),
		Nets:       make(map[string]*Net),
		Precision:  defaultPrecision,
	}

	for _, rec := range bom {
		value := rec.Value
		if value == "" {
			value = rec.Comment
		}
		d.Components[rec.Key] = &Component{
			Designator:       rec.Designator,
			Type:             InferType(rec.Designator),
			Value:            value,
			Footprint:        rec.Footprint,
			Comment:          rec.Comment,
			Manufacturer:     rec.Manufacturer,
			ManufacturerPart: rec.ManufacturerPart,
			SupplierPart:     rec.SupplierPart,
			Attributes:       copyAttrs(rec.Attributes),
			Pins:             make(map[string]string),
			InBOM:            true,
		}
	}

	for _, rec := range placements {
		comp, ok := d.Components[rec.Key]
		if !ok {
			diags.Warnf("merge", "no BOM entry for %s", rec.Designator)
			comp = newStub(rec.Designator)
			d.Components[rec.Key] = comp
		}
		comp.InPlacement = true
		comp.Placement = Placement{
			X:           rec.X,
			Y:           rec.Y,
			HasPosition: rec.HasPosition,
			Rotation:    rec.Rotation,
			HasRotation: rec.HasRotation,
			Side:        rec.Side,
			Layer:       rec.Layer,
		}
	}

	// A designator mismatch between BOM and placement flags both
	// missing sides; the fold above already flags placement-only rows.
	if len(placements) > 0 {
		for _, key := range d.ComponentKeys() {
			c := d.Components[key]
			if c.InBOM && !c.InPlacement {
				diags.Warnf("merge", "no placement for %s", c.Designator)
			}
		}
	}

	for _, rec := range pins {
		comp, ok := d.Components[rec.Key]
		if !ok {
			diags.Warnf("merge", "%s referenced only in netlist", rec.Designator)
			comp = newStub(rec.Designator)
			d.Components[rec.Key] = comp
		}
		comp.InNetlist = true
		comp.Pins[rec.Pin] = rec.Net

		if rec.Net == "" {
			// Explicitly unconnected; listed on the component only
			continue
		}
		net, ok := d.Nets[rec.Net]
		if !ok {
			net = &Net{Name: rec.Net}
			d.Nets[rec.Net] = net
		}
		net.Pins = append(net.Pins, Pin{Designator: comp.Designator, Number: rec.Pin})
		net.PinCount++
	}

	for _, net := range d.Nets {
		sort.Slice(net.Pins, func(i, j int) bool {
			return ComparePins(net.Pins[i], net.Pins[j]) < 0
		})
	}

	d.Board = estimateBoard(placements)
	return d
}

func newStub(designator string) *Component {
	return &Component{
		Designator: designator,
		Type:       InferType(designator),
		Attributes: make(map[string]string),
		Pins:       make(map[string]string),
	}
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// estimateBoard derives approximate board dimensions from the
// placement extent plus a fixed outline margin.
func estimateBoard(placements []normalize.PlacementRecord) Board {
	var b Board
	for _, rec := range placements {
		if !rec.HasPosition {
			continue
		}
		if !b.Valid {
			b.Valid = true
			b.MinX, b.MaxX = rec.X, rec.X
			b.MinY, b.MaxY = rec.Y, rec.Y
			continue
		}
		if rec.X < b.MinX {
			b.MinX = rec.X
		}
		if rec.X > b.MaxX {
			b.MaxX = rec.X
		}
		if rec.Y < b.MinY {
			b.MinY = rec.Y
		}
		if rec.Y > b.MaxY {
			b.MaxY = rec.Y
		}
	}
	if b.Valid {
		b.Width = b.MaxX - b.MinX + 2*boardMargin
		b.Height = b.MaxY - b.MinY + 2*boardMargin
	}
	return b
}

// Verify checks the output invariant: every net pin resolves to a
// component entry or an elided group member. It returns the dangling
// pins, empty when the graph is self-consistent.
func (d *Design) Verify() []Pin {
	known := make(map[string]bool, len(d.Components))
	for _, c := range d.Components {
		known[normalize.NormalizeKey(c.Designator)] = true
	}
	for _, g := range d.Groups {
		for _, desig := range g.Designators {
			known[normalize.NormalizeKey(desig)] = true
		}
	}

	var dangling []Pin
	for _, net := range d.Nets {
		for _, p := range net.Pins {
			if !known[normalize.NormalizeKey(p.Designator)] {
				dangling = append(dangling, p)
			}
		}
	}
	sort.Slice(dangling, func(i, j int) bool { return ComparePins(dangling[i], dangling[j]) < 0 })
	return dangling
}
