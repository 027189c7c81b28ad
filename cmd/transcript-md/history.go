// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transcript-md/internal/archive"
	"github.com/pdiddy/transcript-md/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List conversion runs recorded in the archive",
	Long: `History lists the conversions recorded with convert --archive, newest
first. Pass a run ID to show a single run. Output is a table by default, or
JSON or YAML with --format.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfg.Archive.Path); errors.Is(err, fs.ErrNotExist) {
		if len(args) > 0 {
			return fmt.Errorf("%w: %s", archive.ErrNotFound, args[0])
		}
		fmt.Fprintln(out, "No conversions recorded.")
		return nil
	}

	store, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var runs []types.Run
	if len(args) > 0 {
		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		runs = []types.Run{run}
	} else {
		runs, err = store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
	}

	return formatHistoryOutput(out, runs, format)
}

func formatHistoryOutput(w io.Writer, runs []types.Run, format string) error {
	switch format {
	case "json":
		return archive.WriteJSON(w, runs)
	case "yaml":
		return archive.WriteYAML(w, runs)
	case "table", "":
	default:
		return fmt.Errorf("unsupported format %q: use table, json or yaml", format)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-30s  %8s  %7s  %s\n",
		"ID", "Converted", "Input", "Chars", "Skipped", "Truncated")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %-30s  %8d  %7d  %t\n",
			r.ID, r.ConvertedAt.Format("2006-01-02 15:04:05"), shortenLeft(r.Input, 30),
			r.Characters, r.Skipped, r.Truncated)
	}

	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

// shortenLeft keeps the tail of s so that it fits in width runes, marking
// the cut with a leading "...".
func shortenLeft(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return "..." + string(runes[len(runes)-(width-3):])
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().String("format", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(historyCmd)
}
