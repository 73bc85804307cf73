package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/annota/core/ioformats"
)

var validateEmbeddingInput string

var validateEmbeddingCmd = &cobra.Command{
	Use:   "validate-embedding",
	Short: "Check that a SAM .npy embedding file has the expected tensor shape",
	Long: `validate-embedding decodes a .npy file and confirms it carries a
single-precision tensor in the fixed [1,256,64,64] shape the SAM tool
expects, per the engine's decoderModelUrl/embedding contract.

Example:
  annotatorctl validate-embedding --input embedding.npy`,
	RunE: runValidateEmbedding,
}

func init() {
	validateEmbeddingCmd.Flags().StringVar(&validateEmbeddingInput, "input", "", "path to the .npy file (required)")
	validateEmbeddingCmd.MarkFlagRequired("input")
}

func runValidateEmbedding(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(validateEmbeddingInput)
	if err != nil {
		return fmt.Errorf("read %s: %w", validateEmbeddingInput, err)
	}

	tensor, err := ioformats.DecodeEmbedding(data)
	if err != nil {
		fmt.Printf("invalid: %v\n", err)
		return err
	}

	fmt.Printf("valid: shape %v, %d elements\n", ioformats.EmbeddingShape, len(tensor))
	return nil
}
