package compact

import (
	"sort"

	"pcbfuse/internal/graph"
)

// Each pass is a pure reduction over the working design. Passes report
// whether they changed anything so the driver can skip a recount when
// a level is a no-op. None of them ever touches net membership; the
// elision pass is the only one allowed to reduce the number of
// distinct component entries.

// attributeTiers orders droppable fields from least to most essential.
// Designator, value, footprint, placement and net membership are
// essential and never appear here.
const (
	tierExtras       = 1 // free-text attribute columns
	tierSupplier     = 2
	tierManufacturer = 3
	tierComment      = 4
)

// thinAttributes drops one tier of descriptive fields from every
// component, breadth-first, so the loss spreads evenly across parts.
func thinAttributes(d *graph.Design, tier int) bool {
	changed := false
	for _, c := range d.Components {
		switch tier {
		case tierExtras:
			if len(c.Attributes) > 0 {
				c.Attributes = nil
				changed = true
			}
		case tierSupplier:
			if c.SupplierPart != "" {
				c.SupplierPart = ""
				changed = true
			}
		case tierManufacturer:
			if c.Manufacturer != "" || c.ManufacturerPart != "" {
				c.Manufacturer = ""
				c.ManufacturerPart = ""
				changed = true
			}
		case tierComment:
			// Safe to drop even when it fed the value fallback: the
			// value was copied at build time.
			if c.Comment != "" {
				c.Comment = ""
				changed = true
			}
		}
	}
	return changed
}

// reducePrecision lowers the decimal places used for placement values.
// Connectivity data is untouched by construction.
func reducePrecision(d *graph.Design, decimals int) bool {
	if d.Precision <= decimals {
		return false
	}
	d.Precision = decimals
	return true
}

// summarizeNets caps bus-like nets at a sample of member pins. Nets
// below the fan-out threshold always stay fully enumerated; a net
// never loses its name or its pin count.
func summarizeNets(d *graph.Design, threshold, sampleCap int) bool {
	changed := false
	for _, net := range d.Nets {
		if net.Summarized || net.PinCount < threshold {
			continue
		}
		if sampleCap < len(net.Pins) {
			net.Pins = net.Pins[:sampleCap]
		}
		net.Summarized = true
		changed = true
	}
	return changed
}

// elide folds (footprint, value) classes of at least minClass elidable
// components into count summaries, keeping one representative entry per
// class and the full member list so connectivity stays recoverable.
func elide(d *graph.Design, minClass int, ranker Ranker) bool {
	type class struct {
		footprint string
		value     string
		ctype     string
		keys      []string
	}
	classes := make(map[string]*class)

	for key, c := range d.Components {
		if !ranker.Elidable(c) {
			continue
		}
		id := c.Footprint + "\x00" + c.Value
		cl, ok := classes[id]
		if !ok {
			cl = &class{footprint: c.Footprint, value: c.Value, ctype: c.Type}
			classes[id] = cl
		}
		cl.keys = append(cl.keys, key)
	}

	ids := make([]string, 0, len(classes))
	for id, cl := range classes {
		if len(cl.keys) >= minClass {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	changed := false
	for _, id := range ids {
		cl := classes[id]
		sort.Slice(cl.keys, func(i, j int) bool {
			return graph.CompareDesignators(cl.keys[i], cl.keys[j]) < 0
		})

		repKey := cl.keys[0]
		designators := make([]string, 0, len(cl.keys))
		for _, key := range cl.keys {
			designators = append(designators, d.Components[key].Designator)
			if key != repKey {
				delete(d.Components, key)
			}
		}

		d.Groups = append(d.Groups, &graph.Group{
			Footprint:      cl.footprint,
			Value:          cl.value,
			Type:           cl.ctype,
			Count:          len(cl.keys),
			Representative: d.Components[repKey].Designator,
			Designators:    designators,
		})
		changed = true
	}

	if changed {
		sort.Slice(d.Groups, func(i, j int) bool {
			if d.Groups[i].Footprint != d.Groups[j].Footprint {
				return d.Groups[i].Footprint < d.Groups[j].Footprint
			}
			return d.Groups[i].Value < d.Groups[j].Value
		})
	}
	return changed
}

// Ranker decides which components the elision pass may fold into class
// summaries. It is a policy, not a fixed algorithm; callers can supply
// their own.
type Ranker interface {
	// Elidable reports whether the component may be replaced by its
	// (footprint, value) class summary
	Elidable(c *graph.Component) bool
}

// CommonValueRanker elides generic passives: resistors, capacitors,
// inductors and ferrite beads that carry both a value and a footprint,
// so the class summary fully describes them. Anything a reader would
// inspect individually (ICs, connectors, anything with extra BOM data
// still attached) is kept itemized.
type CommonValueRanker struct{}

func (CommonValueRanker) Elidable(c *graph.Component) bool {
	switch c.Type {
	case "resistor", "capacitor", "inductor", "ferrite_bead":
	default:
		return false
	}
	return c.Value != "" && c.Footprint != ""
}

var _ Ranker = CommonValueRanker{}
