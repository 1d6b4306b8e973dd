package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from the document store",
	Long: `Replays every stored document into the vector index. Cached
embeddings are reused; documents whose embeddings no longer match the
configured provider are re-embedded first.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	count, err := contentService.Reindex(context.Background())
	if err != nil {
		return fmt.Errorf("reindexing: %w", err)
	}

	cmd.Printf("Reindexed %d documents\n", count)
	return nil
}
