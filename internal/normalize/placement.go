package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"pcbfuse/internal/diag"
	"pcbfuse/internal/errors"
	"pcbfuse/internal/source"
)

// Placement converts pick-and-place rows into partial placement
// records. Coordinates strip a "mm" suffix before parsing; a value that
// still fails to parse leaves the field unknown rather than failing the
// merge.
func Placement(table *source.Table, diags *diag.List) ([]PlacementRecord, error) {
	desigCol := findColumn(table.Header, "designator")
	if desigCol < 0 {
		// Pick-and-place exports without a labeled designator column
		// conventionally put it first.
		desigCol = 0
	}

	xCol := findCoordColumn(table.Header, desigCol, "x")
	yCol := findCoordColumn(table.Header, desigCol, "y")
	rotCol := findColumn(table.Header, "rotation")
	layerCol := findColumn(table.Header, "layer")
	if layerCol < 0 {
		layerCol = findColumn(table.Header, "side")
	}

	byKey := make(map[string]PlacementRecord)

	for i, row := range table.Rows {
		cell := row[desigCol]
		if blankCell(cell) {
			diags.Warnf("placement", "row %d has no designator, skipped", i+2)
			continue
		}
		designator := strings.TrimSpace(cell)
		key := NormalizeKey(designator)

		rec := PlacementRecord{Key: key, Designator: designator}

		if xCol >= 0 && yCol >= 0 {
			x, okX := parseCoord(row[xCol])
			y, okY := parseCoord(row[yCol])
			if okX && okY {
				rec.X, rec.Y, rec.HasPosition = x, y, true
			} else if !blankCell(row[xCol]) || !blankCell(row[yCol]) {
				diags.Warnf("placement", "unparseable coordinates for %s: x=%q y=%q",
					designator, row[xCol], row[yCol])
			}
		}

		if rotCol >= 0 {
			if rot, ok := parseCoord(row[rotCol]); ok {
				rec.Rotation, rec.HasRotation = normalizeRotation(rot), true
			} else if !blankCell(row[rotCol]) {
				diags.Warnf("placement", "unparseable rotation for %s: %q", designator, row[rotCol])
			}
		}

		if layerCol >= 0 && !blankCell(row[layerCol]) {
			rec.Layer = strings.TrimSpace(row[layerCol])
			rec.Side = sideFromLayer(rec.Layer)
		}

		if _, dup := byKey[key]; dup {
			diags.Warnf("placement", "duplicate placement row for %s, last wins", designator)
		}
		byKey[key] = rec
	}

	if len(byKey) == 0 {
		return nil, errors.New(errors.InputEmpty, "placement table has no usable rows", nil).WithFile(table.Path)
	}

	records := make([]PlacementRecord, 0, len(byKey))
	for _, rec := range byKey {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

// findCoordColumn locates a coordinate column by single-letter axis
// name, skipping the designator column. Matches "Mid X", "X", "x_mm".
func findCoordColumn(header []string, desigCol int, axis string) int {
	for i, h := range header {
		if i == desigCol {
			continue
		}
		fields := strings.FieldsFunc(strings.ToLower(h), func(r rune) bool {
			return r == ' ' || r == '_' || r == '(' || r == ')'
		})
		for _, f := range fields {
			if f == axis || f == axis+"mm" {
				return i
			}
		}
	}
	return -1
}

func parseCoord(cell string) (float64, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cell), "mm"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeRotation maps any angle into [0, 360)
func normalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

func sideFromLayer(layer string) string {
	switch strings.ToLower(layer) {
	case "t", "top":
		return "top"
	case "b", "bot", "bottom":
		return "bottom"
	}
	return ""
}
