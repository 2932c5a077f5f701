package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"report_explorer/internal/domain"
	"report_explorer/internal/explorer"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		filters       filterFlags
		out           string
		withFavorites bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an HTML page of reviews, score chart and favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.explorer.LoadReports(cmd.Context()); err != nil {
				return err
			}
			filter := filters.filter(cmd)
			page := a.explorer.ApplyFilters(filter)

			var favorites []domain.Favorite
			if withFavorites {
				var err error
				favorites, err = a.explorer.LoadFavorites(cmd.Context())
				if err != nil {
					return err
				}
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			if err := explorer.RenderPage(f, explorer.PageData{
				Query:     filter.Query,
				Reviews:   page.Reviews,
				Favorites: favorites,
				Chart:     page.Chart,
			}); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d reviews to %s\n", len(page.Reviews), out)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "report-explorer.html", "Output file")
	cmd.Flags().BoolVar(&withFavorites, "favorites", true, "Include saved favorites")
	return cmd
}
