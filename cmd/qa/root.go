package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"robocall-qa-go/internal/config"
	"robocall-qa-go/internal/types"
)

var version = "dev"

type rootOptions struct {
	debug bool
	mock  bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "qa",
		Short: "Quality checks for automated collection calls",
		Long: `qa fetches robocall conversations from ElevenLabs, renders them as
time-stamped transcripts and grades them against a QA scorecard prompt.

Settings come from .env, config.yaml (or QA_CONFIG) and the environment.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.mock, "mock", false, "Use the offline mock LLM")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// keep stdout for command output
		if os.Getenv("LOG_OUTPUT") == "" {
			os.Setenv("LOG_OUTPUT", "stderr")
		}
		if opts.debug {
			os.Setenv("LOG_LEVEL", "debug")
		}
	}

	cmd.AddCommand(newFormatCommand())
	cmd.AddCommand(newAuditCommand())
	cmd.AddCommand(newFetchCommand(opts))
	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newTranscribeCommand(opts))
	cmd.AddCommand(newBatchCommand(opts))

	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.mock {
		cfg.LLM.Mock = true
	}
	return cfg, nil
}

// readDocument reads a conversation JSON document from path, or from in
// when path is empty or "-".
func readDocument(in io.Reader, path string) (types.ConversationDocument, error) {
	var doc types.ConversationDocument
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return doc, err
		}
		defer f.Close()
		in = f
	}
	if err := json.NewDecoder(in).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode conversation: %w", err)
	}
	return doc, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
