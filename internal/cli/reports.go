package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"report_explorer/internal/explorer"
)

type filterFlags struct {
	query    string
	minScore float64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Fuzzy search over titles")
	cmd.Flags().Float64Var(&f.minScore, "min-score", 0, "Keep reviews scoring at least this much out of 10")
}

func (f *filterFlags) filter(cmd *cobra.Command) explorer.Filter {
	filter := explorer.Filter{Query: f.query}
	if cmd.Flags().Changed("min-score") {
		minScore := f.minScore
		filter.MinScore = &minScore
	}
	return filter
}

func newReportsCmd(a *app) *cobra.Command {
	var (
		filters    filterFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List reviews",
		Long:  "Load every review and print those matching the optional search and score filters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.explorer.LoadReports(cmd.Context()); err != nil {
				return err
			}
			page := a.explorer.ApplyFilters(filters.filter(cmd))

			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), page.Reviews)
			}
			return outputReviews(cmd.OutOrStdout(), page.Reviews)
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func outputJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func outputReviews(w io.Writer, reviews []explorer.Review) error {
	if len(reviews) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for i, r := range reviews {
		fmt.Fprintf(w, "%d. [%s] %s\n   Score: %s\n", i+1, r.ID, r.DisplayTitle(), r.DisplayScore())
		if link := r.Link(); link != "" {
			fmt.Fprintf(w, "   %s\n", link)
		}
	}
	return nil
}
