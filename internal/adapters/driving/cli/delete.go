package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	id := args[0]
	if err := contentService.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}

	cmd.Printf("Deleted %s\n", id)
	return nil
}
