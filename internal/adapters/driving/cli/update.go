package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var updateExpectVersion string

var updateCmd = &cobra.Command{
	Use:   "update [doc-id] [file]",
	Short: "Replace a document's content and metadata",
	Long: `Replaces a document in one transaction, bumping its version.
A content change bumps the major version; a metadata-only change bumps
the minor version. Pass --expect-version to fail instead of overwriting
a concurrent update.`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (defaults to the file name)")
	updateCmd.Flags().StringVarP(&ingestDepartment, "department", "d", "", "owning department: HR, IT, Admin, Finance, Operations")
	updateCmd.Flags().StringVarP(&ingestCategory, "category", "c", "", "content category, e.g. policies, procedures, faq")
	updateCmd.Flags().StringVarP(&ingestLanguage, "language", "l", "", "content language ar or en (default: detected)")
	updateCmd.Flags().StringVar(&ingestAuthor, "author", "", "document author")
	updateCmd.Flags().StringSliceVar(&ingestTags, "tag", nil, "free-form tag (repeatable)")
	updateCmd.Flags().StringVar(&ingestClassification, "classification", "", "access level: public, internal, confidential")
	updateCmd.Flags().StringVar(&ingestFormat, "format", "", "extractor format override (default: file extension)")
	updateCmd.Flags().StringVar(&updateExpectVersion, "expect-version", "", "fail unless the document is at this version")

	cobra.CheckErr(updateCmd.MarkFlagRequired("department"))
	cobra.CheckErr(updateCmd.MarkFlagRequired("category"))

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	id, path := args[0], args[1]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	meta, format := metaFromFlags(path, string(raw))
	doc, err := contentService.Update(context.Background(), id, raw, format, meta, updateExpectVersion)
	if err != nil {
		return fmt.Errorf("updating %s: %w", id, err)
	}

	cmd.Printf("Updated %s\n", doc.ID)
	cmd.Printf("  Title:   %s\n", doc.Title)
	cmd.Printf("  Version: %s\n", doc.Version)
	return nil
}
