// Package normalize maps raw source rows into canonical partial entity
// records. Each source names the same physical part differently; the
// one canonical key produced here is the only form ever used for
// cross-source lookups.
package normalize

// ComponentRecord is a partial component from one or more BOM rows
// sharing a designator.
type ComponentRecord struct {
	// Key is the normalized designator used for all lookups
	Key string
	// Designator is the original spelling, retained for display
	Designator string

	Value            string
	Footprint        string
	Comment          string
	Manufacturer     string
	ManufacturerPart string
	SupplierPart     string

	// Attributes holds the remaining BOM columns verbatim
	Attributes map[string]string
}

// PlacementRecord is a partial placement from one pick-and-place row
type PlacementRecord struct {
	Key        string
	Designator string

	X           float64
	Y           float64
	Rotation    float64
	HasPosition bool
	HasRotation bool

	// Layer is the raw layer cell; Side is top/bottom when derivable
	Layer string
	Side  string
}

// PinRecord is one (designator, pin, net) membership from the netlist.
// Net is empty for an explicitly unconnected pin.
type PinRecord struct {
	Key        string
	Designator string
	Pin        string
	Net        string
}
