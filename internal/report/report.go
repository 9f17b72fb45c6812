// Package report renders run results for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kitscout/kitscout/internal/pipeline"
)

// Render formats the matched vendors: one block per vendor, one line per
// analyte showing the first accepted page. Vendors are sorted alphabetically;
// analytes keep their request order. An empty matrix renders the no-match
// notice instead.
func Render(matrix pipeline.VendorMatrix, analytes []string) string {
	if len(matrix) == 0 {
		return "No vendors cover every requested analyte.\n"
	}

	vendors := make([]string, 0, len(matrix))
	for vendor := range matrix {
		vendors = append(vendors, vendor)
	}
	sort.Strings(vendors)

	var b strings.Builder
	b.WriteString("=== MATCHED ===\n")
	for _, vendor := range vendors {
		fmt.Fprintf(&b, "%s\n", vendor)
		slots := matrix[vendor]
		for _, analyte := range analytes {
			hits := slots[analyte]
			if len(hits) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %-12s %s\n", analyte, hits[0].FinalURL)
		}
	}
	return b.String()
}
