package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

var (
	docsDepartment string
	docsCategory   string
	docsLanguage   string
	docsJSON       bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect the knowledge base",
	Long:  `List documents, show one document, or print corpus statistics.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsGet,
}

var docsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runDocsStats,
}

var docsBackupCmd = &cobra.Command{
	Use:   "backup [dest-path]",
	Short: "Snapshot the knowledge base to a file",
	Long: `Write a consistent snapshot of the document store to a file.
Without an argument a timestamped file is created in the working
directory. The vector index is not included; restore by pointing the
data directory at the snapshot and running reindex.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocsBackup,
}

func init() {
	docsListCmd.Flags().StringVarP(&docsDepartment, "department", "d", "", "filter by department")
	docsListCmd.Flags().StringVarP(&docsCategory, "category", "c", "", "filter by category")
	docsListCmd.Flags().StringVarP(&docsLanguage, "language", "l", "", "filter by language ar or en")
	docsListCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")
	docsGetCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsGetCmd)
	docsCmd.AddCommand(docsStatsCmd)
	docsCmd.AddCommand(docsBackupCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	filter := driven.ListFilter{
		Category: strings.ToLower(docsCategory),
		Language: domain.Language(docsLanguage),
	}
	if docsDepartment != "" {
		filter.Department = parseDepartment(docsDepartment)
	}

	docs, err := contentService.List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if docsJSON {
		return printJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		doc := &docs[i]
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    Title:      %s\n", doc.Title)
		cmd.Printf("    Department: %s  Category: %s  Language: %s\n",
			doc.Department, doc.Category, doc.Language)
		cmd.Printf("    Version:    %s  Updated: %s\n",
			doc.Version, doc.UpdatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocsGet(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	doc, err := contentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	if docsJSON {
		return printJSON(cmd, doc)
	}

	cmd.Printf("ID:             %s\n", doc.ID)
	cmd.Printf("Title:          %s\n", doc.Title)
	cmd.Printf("Department:     %s\n", doc.Department)
	cmd.Printf("Category:       %s\n", doc.Category)
	cmd.Printf("Language:       %s\n", doc.Language)
	cmd.Printf("Classification: %s\n", doc.Classification)
	cmd.Printf("Version:        %s\n", doc.Version)
	if doc.Author != "" {
		cmd.Printf("Author:         %s\n", doc.Author)
	}
	if len(doc.Tags) > 0 {
		cmd.Printf("Tags:           %s\n", strings.Join(doc.Tags, ", "))
	}
	cmd.Printf("Created:        %s\n", doc.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Printf("Updated:        %s\n", doc.UpdatedAt.Format("2006-01-02 15:04"))
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

func runDocsStats(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	stats, err := contentService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	cmd.Printf("Documents:      %d\n", stats.Documents)
	cmd.Printf("Chunks:         %d\n", stats.Chunks)
	cmd.Printf("Indexed chunks: %d\n", stats.IndexedChunks)

	if len(stats.ByDepartment) > 0 {
		cmd.Println("\nBy department:")
		for _, d := range []domain.Department{
			domain.DepartmentHR,
			domain.DepartmentIT,
			domain.DepartmentAdmin,
			domain.DepartmentFinance,
			domain.DepartmentOperations,
		} {
			if n := stats.ByDepartment[d]; n > 0 {
				cmd.Printf("  %-12s %d\n", d, n)
			}
		}
	}
	if len(stats.ByLanguage) > 0 {
		cmd.Println("\nBy language:")
		for _, l := range []domain.Language{domain.LanguageArabic, domain.LanguageEnglish} {
			if n := stats.ByLanguage[l]; n > 0 {
				cmd.Printf("  %-12s %d\n", l, n)
			}
		}
	}
	return nil
}

func runDocsBackup(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	var dest string
	if len(args) > 0 {
		dest = args[0]
	}

	path, err := contentService.Backup(context.Background(), dest)
	if err != nil {
		return fmt.Errorf("backing up knowledge base: %w", err)
	}
	cmd.Printf("Knowledge base backed up to %s\n", path)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
