// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/transcript-md/internal/archive"
	"github.com/pdiddy/transcript-md/internal/transcript"
	"github.com/pdiddy/transcript-md/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.jsonl> <output.md>",
	Short: "Convert a JSONL transcript to a Markdown document",
	Long: `Convert reads a line-delimited JSON transcript and writes a Markdown
document with a fixed preamble followed by one section per message. Invalid
lines are skipped with a warning. Once the document body would exceed
--max-chars the conversion stops and a truncation notice is appended.

Use - as the input to read stdin or as the output to write stdout.
Diagnostics always go to stderr.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	input, output := args[0], args[1]

	result, err := transcript.ConvertFile(cfg.Conversion, input, output, os.Stderr)
	if err != nil {
		return err
	}

	if cfg.Archive.Enabled {
		return recordRun(cmd.Context(), cfg.Archive, input, output, result)
	}
	return nil
}

func recordRun(ctx context.Context, cfg types.ArchiveConfig, input, output string, result types.ConversionResult) error {
	run := types.Run{
		Input:            input,
		Output:           output,
		ConversionResult: result,
	}
	if input != transcript.StdStream {
		digest, err := archive.FileDigest(input)
		if err != nil {
			return err
		}
		run.InputSHA256 = digest
	}

	store, err := archive.Open(cfg.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err = store.Record(ctx, run)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Recorded run %s in %s\n", run.ID, cfg.Path)
	return nil
}

func init() {
	convertCmd.Flags().Int("max-chars", types.DefaultMaxCharacters, "character budget for the document body")
	convertCmd.Flags().Int("tool-input-limit", types.DefaultToolInputLimit, "characters of tool input shown per tool call")
	convertCmd.Flags().Int("tool-result-limit", types.DefaultToolResultLimit, "characters of output shown per tool result")
	convertCmd.Flags().Bool("archive", false, "record the run in the archive")

	viper.BindPFlag("conversion.max_characters", convertCmd.Flags().Lookup("max-chars"))
	viper.BindPFlag("conversion.tool_input_limit", convertCmd.Flags().Lookup("tool-input-limit"))
	viper.BindPFlag("conversion.tool_result_limit", convertCmd.Flags().Lookup("tool-result-limit"))
	viper.BindPFlag("archive.enabled", convertCmd.Flags().Lookup("archive"))

	rootCmd.AddCommand(convertCmd)
}
