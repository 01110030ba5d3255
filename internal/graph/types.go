// Package graph holds the unified component/net model built from the
// three normalized record streams. The graph is the single ownership
// point for all entity data: the compactor and serializer read it and
// never see raw source rows.
package graph

import "sort"

// Placement is the physical location of a component on the board
type Placement struct {
	X           float64
	Y           float64
	HasPosition bool

	Rotation    float64
	HasRotation bool

	Side  string
	Layer string
}

// Component is one physical part instance, identified by its reference
// designator.
type Component struct {
	// Designator is the original spelling, used for display
	Designator string
	// Type is inferred from the designator prefix (resistor, ic, ...)
	Type string

	Value            string
	Footprint        string
	Comment          string
	Manufacturer     string
	ManufacturerPart string
	SupplierPart     string

	// Attributes holds the BOM's remaining key/value columns
	Attributes map[string]string

	Placement Placement

	// Pins maps pin number to net name; "" marks an explicitly
	// unconnected pin.
	Pins map[string]string

	// Source presence flags; a component missing from a source is
	// flagged in diagnostics, never dropped.
	InBOM       bool
	InPlacement bool
	InNetlist   bool
}

// Pin is a (reference designator, pin number) pair
type Pin struct {
	Designator string
	Number     string
}

func (p Pin) String() string {
	return p.Designator + "." + p.Number
}

// Net is a set of electrically connected pins. When Summarized, Pins
// holds only a capped sample and PinCount keeps the full membership
// count; the name and count are never lost.
type Net struct {
	Name       string
	Pins       []Pin
	PinCount   int
	Summarized bool
}

// Group is a count-based summary of elided components sharing a
// (footprint, value) class. The full member list keeps every net pin
// resolvable after elision.
type Group struct {
	Footprint      string
	Value          string
	Type           string
	Count          int
	Representative string
	Designators    []string
}

// Board is the placement extent estimate
type Board struct {
	Valid  bool
	MinX   float64
	MaxX   float64
	MinY   float64
	MaxY   float64
	Width  float64
	Height float64
}

// Design is the unified graph: components keyed by normalized
// designator, nets keyed by name.
type Design struct {
	Components map[string]*Component
	Nets       map[string]*Net
	Groups     []*Group
	Board      Board

	// Precision is the decimal places used for placement values at
	// serialization; the precision-reduction pass lowers it.
	Precision int
}

// ComponentKeys returns the component map keys in natural designator
// order.
func (d *Design) ComponentKeys() []string {
	keys := make([]string, 0, len(d.Components))
	for k := range d.Components {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return CompareDesignators(keys[i], keys[j]) < 0 })
	return keys
}

// NetNames returns the net map keys sorted by name
func (d *Design) NetNames() []string {
	names := make([]string, 0, len(d.Nets))
	for n := range d.Nets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TypeCounts tallies components per inferred type, counting elided
// group members at their full count.
func (d *Design) TypeCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range d.Components {
		counts[c.Type]++
	}
	for _, g := range d.Groups {
		// The representative stays in Components and is already counted
		counts[g.Type] += g.Count - 1
	}
	return counts
}

// Clone deep-copies the design so reduction passes can work on a copy
// while the caller keeps the original.
func (d *Design) Clone() *Design {
	out := &Design{
		Components: make(map[string]*Component, len(d.Components)),
		Nets:       make(map[string]*Net, len(d.Nets)),
		Groups:     make([]*Group, 0, len(d.Groups)),
		Board:      d.Board,
		Precision:  d.Precision,
	}
	for k, c := range d.Components {
		cc := *c
		if c.Attributes != nil {
			cc.Attributes = make(map[string]string, len(c.Attributes))
			for ak, av := range c.Attributes {
				cc.Attributes[ak] = av
			}
		}
		if c.Pins != nil {
			cc.Pins = make(map[string]string, len(c.Pins))
			for pk, pv := range c.Pins {
				cc.Pins[pk] = pv
			}
		}
		out.Components[k] = &cc
	}
	for n, net := range d.Nets {
		nn := *net
		nn.Pins = make([]Pin, len(net.Pins))
		copy(nn.Pins, net.Pins)
		out.Nets[n] = &nn
	}
	for _, g := range d.Groups {
		gg := *g
		gg.Designators = make([]string, len(g.Designators))
		copy(gg.Designators, g.Designators)
		out.Groups = append(out.Groups, &gg)
	}
	return out
}

// Connectivity returns every (net, pin) membership of fully enumerated
// nets as a sorted list of "NET REF.PIN" strings. Used to assert that
// reduction passes never touch connectivity.
func (d *Design) Connectivity() []string {
	var out []string
	for name, net := range d.Nets {
		if net.Summarized {
			continue
		}
		for _, p := range net.Pins {
			out = append(out, name+" "+p.String())
		}
	}
	sort.Strings(out)
	return out
}
