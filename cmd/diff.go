package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/markpad/internal/diff"
	"github.com/zjrosen/markpad/internal/ui/diffview"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Show a line diff between two files",
	Long: `Compare two files and print the line diff with per-side line
numbers, using the same renderer as the editor's diff pane.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().Bool("split", false, "render side-by-side instead of unified")
	diffCmd.Flags().Int("width", 120, "render width in columns")
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	newData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}

	rows := diff.Rows(string(oldData), string(newData))
	stats := diffview.Count(rows)

	mode := diffview.ModeUnified
	if split, _ := cmd.Flags().GetBool("split"); split {
		mode = diffview.ModeSplit
	}
	width, _ := cmd.Flags().GetInt("width")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, diffview.Render(rows, mode, width))
	if stats.Added > 0 || stats.Removed > 0 {
		fmt.Fprintln(out, stats.String())
	}
	return nil
}
