package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quillcli/quill/internal/config"
	"github.com/quillcli/quill/internal/history"
)

var (
	historyLimit  int
	historySearch string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past prompts",
	Long:  `List recently submitted prompts from the history database, optionally filtered by a search term.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of prompts to show")
	historyCmd.Flags().StringVarP(&historySearch, "search", "s", "", "only show prompts containing this text")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}

	db, err := history.NewDB(path)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := db.Repository()
	var entries []history.Entry
	if historySearch != "" {
		entries, err = repo.Search(historySearch, historyLimit)
	} else {
		entries, err = repo.Recent(historyLimit)
	}
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no prompts found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\n", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Text)
	}
	return w.Flush()
}
