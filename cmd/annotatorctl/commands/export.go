package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/annota/core/ioformats"
	"github.com/annota/core/store"
)

var (
	exportInput  string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Decode an annotation source file and re-encode it as GeoJSON",
	Long: `export decodes --input (a PNG label mask or a GeoJSON
FeatureCollection) into the engine's in-memory annotation set, then
re-encodes it as a GeoJSON FeatureCollection on --output (stdout by
default).

Examples:
  annotatorctl export --input mask.png --input-format png
  annotatorctl export --input annotations.geojson --output out.geojson`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "path to the source file (required)")
	exportCmd.Flags().StringVar(&exportFormat, "input-format", "", "png|geojson (default: inferred from --input's extension)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output path (default: stdout)")
	exportCmd.MarkFlagRequired("input")
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(exportInput)
	if err != nil {
		return fmt.Errorf("read %s: %w", exportInput, err)
	}

	format := exportFormat
	if format == "" {
		format = inferFormat(exportInput)
	}

	var anns []store.Annotation
	switch format {
	case "png":
		decoded, err := ioformats.DecodePNGMask(data)
		if err != nil {
			return fmt.Errorf("decode png mask: %w", err)
		}
		anns = decoded
	case "geojson":
		decoded, err := ioformats.ImportGeoJSON(data)
		if err != nil {
			return fmt.Errorf("decode geojson: %w", err)
		}
		anns = decoded
	default:
		return fmt.Errorf("unrecognized input format %q (want png or geojson)", format)
	}

	out, err := ioformats.ExportGeoJSON(anns)
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "decoded %d annotation(s) from %s (%s)\n", len(anns), exportInput, format)
	}

	if exportOutput == "" {
		_, err = os.Stdout.Write(append(out, '\n'))
		return err
	}
	return os.WriteFile(exportOutput, out, 0o644)
}

// inferFormat guesses an input format from its file extension.
func inferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".geojson", ".json":
		return "geojson"
	default:
		return ""
	}
}
