package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

var (
	queryLanguage    string
	queryDepartments []string
	queryClearance   string
	queryJSON        bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Runs one question through the engine: scope check, retrieval,
grounded generation and the post-generation grounding gate. Questions
the sources cannot support are refused with an escalation message.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryLanguage, "language", "l", "", "answer language ar or en (default: detected)")
	queryCmd.Flags().StringSliceVarP(&queryDepartments, "department", "d", nil, "restrict retrieval to a department (repeatable)")
	queryCmd.Flags().StringVar(&queryClearance, "clearance", "", "requester clearance: public, internal, confidential")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	departments := make([]domain.Department, 0, len(queryDepartments))
	for _, d := range queryDepartments {
		departments = append(departments, parseDepartment(d))
	}

	resp, err := queryService.Answer(context.Background(), domain.QueryRequest{
		Text:     args[0],
		Language: domain.Language(queryLanguage),
		Requester: domain.Requester{
			Departments: departments,
			Clearance:   domain.Classification(queryClearance),
		},
	})
	if err != nil {
		return fmt.Errorf("answering query: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, resp)
	}

	cmd.Println(resp.Answer)

	if len(resp.Sources) > 0 {
		cmd.Println("\nSources:")
		for _, src := range resp.Sources {
			cmd.Printf("  - %s (%s, %.0f%%)\n", src.Title, src.Department, src.Similarity*100)
		}
	}
	if resp.State == domain.StateFinalized {
		cmd.Printf("\nConfidence: %.0f%%\n", resp.Confidence)
	}
	return nil
}
