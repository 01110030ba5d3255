package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"pcbfuse/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check BOM",
	Short: "Report which fields the BOM export actually contains",
	Long: `Check a BOM export for analysis readiness: which columns are present,
how complete each one is, and whether the minimum fields for fusion
are available.

Examples:
  pcbfuse check bom.csv
  pcbfuse check bom.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// requiredColumns are the fields fusion cannot do without; enhanced
// columns improve the analysis but are optional.
var (
	requiredColumns = []string{"designator", "value", "footprint"}
	enhancedColumns = []string{"manufacturer", "manufacturer part", "supplier part"}
)

func runCheck(cmd *cobra.Command, args []string) error {
	table, err := source.ReadTable(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("BOM analysis: %s\n", table.Path)
	fmt.Printf("  %d columns, %d rows\n\n", len(table.Header), len(table.Rows))

	type columnStat struct {
		name      string
		populated int
	}
	stats := make([]columnStat, len(table.Header))
	for i, name := range table.Header {
		stats[i].name = name
	}
	for _, row := range table.Rows {
		for i := range table.Header {
			if i < len(row) && populatedCell(row[i]) {
				stats[i].populated++
			}
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].name < stats[j].name })

	fmt.Println("Key columns:")
	for i, name := range table.Header {
		if !keyColumn(name) {
			continue
		}
		samples := columnSamples(table.Rows, i, 2)
		if len(samples) > 0 {
			fmt.Printf("  %-24s e.g. %s\n", name, strings.Join(samples, ", "))
		} else {
			fmt.Printf("  %s\n", name)
		}
	}

	fmt.Println("\nColumn completeness:")
	for _, s := range stats {
		percent := 0.0
		if len(table.Rows) > 0 {
			percent = float64(s.populated) / float64(len(table.Rows)) * 100
		}
		fmt.Printf("  %-24s %d/%d (%.1f%%)\n", s.name, s.populated, len(table.Rows), percent)
	}

	missing := missingColumns(table.Header, requiredColumns)
	missingEnhanced := missingColumns(table.Header, enhancedColumns)

	fmt.Println("\nAnalysis readiness:")
	if len(missing) == 0 {
		fmt.Println("  minimum required fields present")
	} else {
		fmt.Printf("  missing required fields: %s\n", strings.Join(missing, ", "))
	}
	if len(missingEnhanced) == 0 {
		fmt.Println("  enhanced fields present")
	} else {
		fmt.Printf("  missing enhanced fields: %s\n", strings.Join(missingEnhanced, ", "))
	}

	if len(missing) > 0 {
		return fmt.Errorf("BOM is missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// keyColumn reports whether a header names one of the fields fusion
// reads directly rather than passing through as an attribute
func keyColumn(name string) bool {
	h := strings.ToLower(name)
	for _, kw := range []string{"designator", "value", "footprint", "comment"} {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

// columnSamples returns up to max non-blank values from a column
func columnSamples(rows [][]string, col, max int) []string {
	var samples []string
	for _, row := range rows {
		if len(samples) >= max {
			break
		}
		if col < len(row) && populatedCell(row[col]) {
			samples = append(samples, strings.TrimSpace(row[col]))
		}
	}
	return samples
}

func populatedCell(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return false
	}
	switch strings.ToLower(trimmed) {
	case "nan", "none", "null":
		return false
	}
	return true
}

// missingColumns reports which wanted fields have no matching header,
// compared case-insensitively by substring so "Designator" matches
// "BOM Designator".
func missingColumns(header []string, wanted []string) []string {
	var missing []string
	for _, w := range wanted {
		found := false
		for _, h := range header {
			if strings.Contains(strings.ToLower(h), w) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, w)
		}
	}
	return missing
}
