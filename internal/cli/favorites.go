package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"report_explorer/internal/domain"
)

func newFavoritesCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage saved favorites",
	}
	cmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	show := func(cmd *cobra.Command, favorites []domain.Favorite) error {
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), favorites)
		}
		return outputFavorites(cmd.OutOrStdout(), favorites)
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List favorites, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			favorites, err := a.explorer.LoadFavorites(cmd.Context())
			if err != nil {
				return err
			}
			return show(cmd, favorites)
		},
	}

	saveCmd := &cobra.Command{
		Use:   "save <report-id>",
		Short: "Save a review as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.explorer.LoadReports(cmd.Context()); err != nil {
				return err
			}
			favorites, err := a.explorer.SaveFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return show(cmd, favorites)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid favorite id %q", args[0])
			}
			favorites, err := a.explorer.DeleteFavorite(cmd.Context(), id)
			if err != nil {
				return err
			}
			return show(cmd, favorites)
		},
	}

	cmd.AddCommand(listCmd, saveCmd, deleteCmd)
	return cmd
}

func outputFavorites(w io.Writer, favorites []domain.Favorite) error {
	if len(favorites) == 0 {
		_, err := fmt.Fprintln(w, "No favorites yet.")
		return err
	}
	for _, f := range favorites {
		score := "N/A"
		if f.Score != nil {
			score = *f.Score
		}
		fmt.Fprintf(w, "#%d %s\n   Score: %s  Saved: %s\n", f.ID, f.Title, score, f.CreatedAt.Format("2006-01-02 15:04"))
		if f.URL != nil {
			fmt.Fprintf(w, "   %s\n", *f.URL)
		}
	}
	return nil
}
