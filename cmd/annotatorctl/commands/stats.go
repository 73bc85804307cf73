package commands

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/annota/core/geometry"
	"github.com/annota/core/ioformats"
)

var statsInput string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a GeoJSON annotation file",
	Long: `stats imports a GeoJSON FeatureCollection and prints a per-shape-kind
breakdown plus the overall bounding box, useful for sanity-checking an
export before handing it to a downstream pipeline.

Example:
  annotatorctl stats --input annotations.geojson`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsInput, "input", "", "path to the GeoJSON file (required)")
	statsCmd.MarkFlagRequired("input")
}

func runStats(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(statsInput)
	if err != nil {
		return fmt.Errorf("read %s: %w", statsInput, err)
	}

	anns, err := ioformats.ImportGeoJSON(data)
	if err != nil {
		return fmt.Errorf("decode geojson: %w", err)
	}

	counts := make(map[geometry.Kind]int)
	// Start inverted so the first Union call always takes the annotation's
	// own bounds (geometry.Bounds{} is not itself "empty" by geometry's
	// definition, since a zero-area box at the origin still satisfies
	// MinX<=MaxX/MinY<=MaxY).
	bounds := geometry.Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, ann := range anns {
		counts[ann.Shape.Kind]++
		bounds = bounds.Union(ann.Shape.Bounds())
	}

	fmt.Printf("%d annotation(s)\n", len(anns))

	kinds := make([]geometry.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Printf("  %-12s %d\n", k.String(), counts[k])
	}

	if len(anns) > 0 {
		fmt.Printf("bounds: [%.2f, %.2f, %.2f, %.2f]\n", bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY)
	}
	return nil
}
