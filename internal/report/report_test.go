package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kitscout/kitscout/internal/pipeline"
)

func TestRenderSortsVendorsAndKeepsAnalyteOrder(t *testing.T) {
	t.Parallel()

	analytes := []string{"NOX4", "CXCL10"}
	matrix := pipeline.VendorMatrix{
		"cusabio.com": {
			"NOX4":   {{FinalURL: "https://cusabio.com/nox4"}},
			"CXCL10": {{FinalURL: "https://cusabio.com/cxcl10"}},
		},
		"abcam.com": {
			"NOX4": {
				{FinalURL: "https://abcam.com/nox4-first"},
				{FinalURL: "https://abcam.com/nox4-second"},
			},
			"CXCL10": {{FinalURL: "https://abcam.com/cxcl10"}},
		},
	}

	out := Render(matrix, analytes)

	require.True(t, strings.HasPrefix(out, "=== MATCHED ===\n"))
	require.Less(t, strings.Index(out, "abcam.com"), strings.Index(out, "cusabio.com"))

	// Analytes stay in request order, showing the first hit only.
	abcamBlock := out[strings.Index(out, "abcam.com"):strings.Index(out, "cusabio.com")]
	require.Less(t, strings.Index(abcamBlock, "NOX4"), strings.Index(abcamBlock, "CXCL10"))
	require.Contains(t, abcamBlock, "https://abcam.com/nox4-first")
	require.NotContains(t, abcamBlock, "https://abcam.com/nox4-second")
}

func TestRenderEmptyMatrix(t *testing.T) {
	t.Parallel()

	out := Render(pipeline.VendorMatrix{}, []string{"NOX4", "CXCL10"})
	require.Equal(t, "No vendors cover every requested analyte.\n", out)
	require.NotContains(t, out, "=== MATCHED ===")
}
