package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/lang"
)

var (
	ingestTitle          string
	ingestDepartment     string
	ingestCategory       string
	ingestLanguage       string
	ingestAuthor         string
	ingestTags           []string
	ingestClassification string
	ingestFormat         string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the knowledge base",
	Long: `Extracts, chunks, embeds and indexes a document file.
Supported formats: txt, md, html, docx.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (defaults to the file name)")
	ingestCmd.Flags().StringVarP(&ingestDepartment, "department", "d", "", "owning department: HR, IT, Admin, Finance, Operations")
	ingestCmd.Flags().StringVarP(&ingestCategory, "category", "c", "", "content category, e.g. policies, procedures, faq")
	ingestCmd.Flags().StringVarP(&ingestLanguage, "language", "l", "", "content language ar or en (default: detected)")
	ingestCmd.Flags().StringVar(&ingestAuthor, "author", "", "document author")
	ingestCmd.Flags().StringSliceVar(&ingestTags, "tag", nil, "free-form tag (repeatable)")
	ingestCmd.Flags().StringVar(&ingestClassification, "classification", "", "access level: public, internal, confidential")
	ingestCmd.Flags().StringVar(&ingestFormat, "format", "", "extractor format override (default: file extension)")

	cobra.CheckErr(ingestCmd.MarkFlagRequired("department"))
	cobra.CheckErr(ingestCmd.MarkFlagRequired("category"))

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	meta, format := metaFromFlags(path, string(raw))
	doc, err := contentService.Create(context.Background(), raw, format, meta)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	cmd.Printf("Ingested %s\n", path)
	cmd.Printf("  ID:      %s\n", doc.ID)
	cmd.Printf("  Title:   %s\n", doc.Title)
	cmd.Printf("  Version: %s\n", doc.Version)
	return nil
}

// metaFromFlags assembles document metadata from the ingest/update flags,
// detecting the language from content when not given.
func metaFromFlags(path, content string) (domain.DocumentMeta, string) {
	title := ingestTitle
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	language := domain.Language(ingestLanguage)
	if !language.IsValid() {
		language = lang.Detect(content, engineConfig.Org.DefaultLanguage)
	}

	format := ingestFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	return domain.DocumentMeta{
		Title:          title,
		Department:     parseDepartment(ingestDepartment),
		Category:       strings.ToLower(ingestCategory),
		Language:       language,
		Author:         ingestAuthor,
		Tags:           ingestTags,
		Classification: domain.Classification(strings.ToLower(ingestClassification)),
	}, format
}

// parseDepartment matches a flag value to a known department,
// case-insensitively. Unknown values pass through so validation can
// name them in its error.
func parseDepartment(value string) domain.Department {
	for _, d := range []domain.Department{
		domain.DepartmentHR,
		domain.DepartmentIT,
		domain.DepartmentAdmin,
		domain.DepartmentFinance,
		domain.DepartmentOperations,
	} {
		if strings.EqualFold(value, string(d)) {
			return d
		}
	}
	return domain.Department(value)
}
