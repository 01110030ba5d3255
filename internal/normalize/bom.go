package normalize

import (
	"sort"
	"strings"

	"pcbfuse/internal/diag"
	"pcbfuse/internal/errors"
	"pcbfuse/internal/source"
)

// BOM converts BOM spreadsheet rows into partial component records.
// A designator cell may list several comma-separated designators; each
// gets the row's attributes. Rows sharing a designator merge
// last-value-wins per attribute, with a warning on conflicts.
func BOM(table *source.Table, diags *diag.List) ([]ComponentRecord, error) {
	desigCol := findColumn(table.Header, "designator")
	if desigCol < 0 {
		return nil, errors.Newf(errors.TableInvalid,
			"no designator column found (columns: %s)", strings.Join(table.Header, ", ")).
			WithFile(table.Path)
	}

	byKey := make(map[string]*ComponentRecord)

	for i, row := range table.Rows {
		cell := row[desigCol]
		if blankCell(cell) {
			diags.Warnf("bom", "row %d has no designator, skipped", i+2)
			continue
		}

		for _, designator := range strings.Split(cell, ",") {
			designator = strings.TrimSpace(designator)
			if designator == "" {
				continue
			}
			key := NormalizeKey(designator)

			rec, ok := byKey[key]
			if !ok {
				rec = &ComponentRecord{
					Key:        key,
					Designator: designator,
					Attributes: make(map[string]string),
				}
				byKey[key] = rec
			}

			for col, header := range table.Header {
				if col == desigCol || blankCell(row[col]) {
					continue
				}
				applyBOMCell(rec, header, strings.TrimSpace(row[col]), diags)
			}
		}
	}

	if len(byKey) == 0 {
		return nil, errors.New(errors.InputEmpty, "BOM has no usable rows", nil).WithFile(table.Path)
	}

	records := make([]ComponentRecord, 0, len(byKey))
	for _, rec := range byKey {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

// applyBOMCell folds one cell into the record, last value wins
func applyBOMCell(rec *ComponentRecord, header, value string, diags *diag.List) {
	set := func(field *string) {
		if *field != "" && *field != value {
			diags.Warnf("bom", "conflicting %s for %s: %q replaces %q",
				strings.ToLower(header), rec.Designator, value, *field)
		}
		*field = value
	}

	switch classifyBOMColumn(header) {
	case colValue:
		set(&rec.Value)
	case colFootprint:
		set(&rec.Footprint)
	case colComment:
		set(&rec.Comment)
	case colManufacturerPart:
		set(&rec.ManufacturerPart)
	case colManufacturer:
		set(&rec.Manufacturer)
	case colSupplierPart:
		set(&rec.SupplierPart)
	default:
		if prev, ok := rec.Attributes[header]; ok && prev != value {
			diags.Warnf("bom", "conflicting %q for %s: %q replaces %q",
				header, rec.Designator, value, prev)
		}
		rec.Attributes[header] = value
	}
}

type bomColumn int

const (
	colOther bomColumn = iota
	colValue
	colFootprint
	colComment
	colManufacturer
	colManufacturerPart
	colSupplierPart
)

func classifyBOMColumn(header string) bomColumn {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case h == "value":
		return colValue
	case strings.Contains(h, "footprint"), strings.Contains(h, "package"):
		return colFootprint
	case h == "comment":
		return colComment
	case strings.Contains(h, "manufacturer part"), strings.Contains(h, "mfr part"):
		return colManufacturerPart
	case strings.Contains(h, "manufacturer"):
		return colManufacturer
	case strings.Contains(h, "supplier part"):
		return colSupplierPart
	}
	return colOther
}

// findColumn returns the index of the first header containing needle
// (case-insensitive), or -1.
func findColumn(header []string, needle string) int {
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), needle) {
			return i
		}
	}
	return -1
}
