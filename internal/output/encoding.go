// Package output renders the unified design as a YAML document.
// Encoding is deterministic: mappings are built as explicitly ordered
// node trees, never Go maps, so identical designs produce byte-identical
// output. The document uses only standard YAML scalars and re-parses
// with any generic YAML reader.
package output

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pcbfuse/internal/graph"
	"pcbfuse/internal/version"
)

// Report describes the reduction applied before serialization. A nil
// report omits the reduction section entirely, which is also how the
// compactor measures candidate output without recursion into itself.
type Report struct {
	TokenLimit int
	Tokens     int
	Level      int
	BudgetMet  bool
	Passes     []string
}

// Encode renders the design to YAML
func Encode(d *graph.Design, report *Report) ([]byte, error) {
	doc := mapping()
	addPair(doc, "metadata", metadataNode(d, report))
	addPair(doc, "components", componentsNode(d))
	addPair(doc, "nets", netsNode(d))
	if len(d.Groups) > 0 {
		addPair(doc, "component_groups", groupsNode(d))
	}
	addPair(doc, "statistics", statisticsNode(d))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func metadataNode(d *graph.Design, report *Report) *yaml.Node {
	m := mapping()
	addPair(m, "generator", str("pcbfuse v"+version.Version))
	addPair(m, "component_count", intn(len(d.Components)+elidedCount(d)))
	addPair(m, "net_count", intn(len(d.Nets)))

	if d.Board.Valid {
		addPair(m, "board_dimensions", boardNode(d))
	}

	cs := mapping()
	addPair(cs, "units", str("millimeters (mm)"))
	addPair(cs, "origin", str("bottom-left corner of the board"))
	addPair(cs, "rotation", str("degrees, counter-clockwise positive"))
	addPair(cs, "placement_reference", str("component center"))
	addPair(m, "coordinate_system", cs)

	lc := mapping()
	addPair(lc, "T", str("top side"))
	addPair(lc, "B", str("bottom side"))
	addPair(m, "layer_codes", lc)

	if report != nil {
		r := mapping()
		addPair(r, "token_limit", intn(report.TokenLimit))
		addPair(r, "tokens", intn(report.Tokens))
		addPair(r, "level", intn(report.Level))
		addPair(r, "budget_met", booln(report.BudgetMet))
		if len(report.Passes) > 0 {
			passes := sequence()
			for _, p := range report.Passes {
				passes.Content = append(passes.Content, str(p))
			}
			addPair(r, "passes", passes)
		}
		addPair(m, "reduction", r)
	}
	return m
}

func boardNode(d *graph.Design) *yaml.Node {
	b := mapping()
	addPair(b, "width_mm", float(d.Board.Width, 1))
	addPair(b, "height_mm", float(d.Board.Height, 1))
	addPair(b, "estimated_board_size", str(fmt.Sprintf("%smm x %smm",
		FormatFloat(d.Board.Width, 1), FormatFloat(d.Board.Height, 1))))

	extent := mapping()
	addPair(extent, "min_x_mm", float(d.Board.MinX, 1))
	addPair(extent, "max_x_mm", float(d.Board.MaxX, 1))
	addPair(extent, "min_y_mm", float(d.Board.MinY, 1))
	addPair(extent, "max_y_mm", float(d.Board.MaxY, 1))
	addPair(b, "component_extent", extent)

	addPair(b, "note", str("estimated from component placement with 5mm margin"))
	return b
}

func componentsNode(d *graph.Design) *yaml.Node {
	m := mapping()
	for _, key := range d.ComponentKeys() {
		addPair(m, d.Components[key].Designator, componentNode(d, d.Components[key]))
	}
	return m
}

func componentNode(d *graph.Design, c *graph.Component) *yaml.Node {
	m := mapping()
	addPair(m, "type", str(c.Type))
	if c.Value != "" {
		addPair(m, "value", str(c.Value))
	}
	if c.Footprint != "" {
		addPair(m, "footprint", str(c.Footprint))
	}
	if c.Comment != "" && c.Comment != c.Value {
		addPair(m, "comment", str(c.Comment))
	}
	if c.Manufacturer != "" {
		addPair(m, "manufacturer", str(c.Manufacturer))
	}
	if c.ManufacturerPart != "" {
		addPair(m, "manufacturer_part", str(c.ManufacturerPart))
	}
	if c.SupplierPart != "" {
		addPair(m, "supplier_part", str(c.SupplierPart))
	}

	if len(c.Attributes) > 0 {
		attrs := mapping()
		keys := make([]string, 0, len(c.Attributes))
		for k := range c.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			addPair(attrs, k, str(c.Attributes[k]))
		}
		addPair(m, "attributes", attrs)
	}

	if c.Placement.HasPosition {
		p := mapping()
		addPair(p, "x_mm", float(c.Placement.X, d.Precision))
		addPair(p, "y_mm", float(c.Placement.Y, d.Precision))
		if c.Placement.HasRotation {
			addPair(p, "rotation_deg", float(c.Placement.Rotation, d.Precision))
		}
		if c.Placement.Layer != "" {
			addPair(p, "layer", str(c.Placement.Layer))
		}
		if c.Placement.Side != "" {
			addPair(p, "side", str(c.Placement.Side))
		}
		addPair(m, "placement", p)
	}

	if len(c.Pins) > 0 {
		pins := mapping()
		nums := make([]string, 0, len(c.Pins))
		for n := range c.Pins {
			nums = append(nums, n)
		}
		sort.Slice(nums, func(i, j int) bool { return comparePinNumbers(nums[i], nums[j]) < 0 })
		for _, n := range nums {
			net := c.Pins[n]
			if net == "" {
				net = "unconnected"
			}
			addPair(pins, n, str(net))
		}
		addPair(m, "pins", pins)
	}

	return m
}

func netsNode(d *graph.Design) *yaml.Node {
	m := mapping()
	for _, name := range d.NetNames() {
		net := d.Nets[name]
		if net.Summarized {
			s := mapping()
			addPair(s, "pin_count", intn(net.PinCount))
			addPair(s, "summarized", booln(true))
			if len(net.Pins) > 0 {
				sample := sequence()
				for _, p := range net.Pins {
					sample.Content = append(sample.Content, str(p.String()))
				}
				addPair(s, "sample_pins", sample)
			}
			addPair(m, name, s)
			continue
		}
		pins := sequence()
		for _, p := range net.Pins {
			pins.Content = append(pins.Content, str(p.String()))
		}
		addPair(m, name, pins)
	}
	return m
}

func groupsNode(d *graph.Design) *yaml.Node {
	seq := sequence()
	for _, g := range d.Groups {
		m := mapping()
		addPair(m, "type", str(g.Type))
		if g.Value != "" {
			addPair(m, "value", str(g.Value))
		}
		if g.Footprint != "" {
			addPair(m, "footprint", str(g.Footprint))
		}
		addPair(m, "count", intn(g.Count))
		addPair(m, "representative", str(g.Representative))
		members := sequence()
		members.Style = yaml.FlowStyle
		for _, ref := range g.Designators {
			members.Content = append(members.Content, str(ref))
		}
		addPair(m, "designators", members)
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func statisticsNode(d *graph.Design) *yaml.Node {
	counts := d.TypeCounts()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	tc := mapping()
	for _, t := range types {
		addPair(tc, t, intn(counts[t]))
	}

	m := mapping()
	addPair(m, "component_types", tc)
	return m
}

func elidedCount(d *graph.Design) int {
	n := 0
	for _, g := range d.Groups {
		// The representative is still itemized in Components
		n += g.Count - 1
	}
	return n
}

// comparePinNumbers orders pin identifiers numerically when both are
// numbers, lexically otherwise.
func comparePinNumbers(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai - bi
	}
	return strings.Compare(a, b)
}

// Node constructors. Scalar tags are explicit so a value like "100"
// in a string field stays a string on re-parse.

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, str(key), value)
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intn(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func booln(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func float(f float64, decimals int) *yaml.Node {
	value := FormatFloat(f, decimals)
	tag := "!!float"
	if !strings.ContainsAny(value, ".eE") {
		tag = "!!int"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
