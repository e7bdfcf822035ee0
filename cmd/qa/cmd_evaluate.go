package main

import (
	"errors"

	"github.com/spf13/cobra"

	"robocall-qa-go/internal/processor"
)

type evaluateOptions struct {
	file           string
	conversationID string
	prompt         string
	resultsDir     string
	audio          bool
	audioDir       string
}

func newEvaluateCommand(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Grade one conversation against the QA scorecard",
		Long: `Grade one conversation against the QA scorecard prompt.

The conversation comes from a local JSON file (--file, "-" for stdin) or is
fetched from ElevenLabs (--conversation-id). The model's verdict is saved
as llm_result_<YYYYMMDD>_<HHMMSS>.json in the results directory and the run
summary is printed as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Conversation JSON file")
	cmd.Flags().StringVarP(&opts.conversationID, "conversation-id", "c", "", "ElevenLabs conversation id")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Rubric prompt file (default from config)")
	cmd.Flags().StringVar(&opts.resultsDir, "results-dir", "", "Directory for saved verdicts (default from config)")
	cmd.Flags().BoolVar(&opts.audio, "audio", false, "Also download the recording")
	cmd.Flags().StringVar(&opts.audioDir, "audio-dir", "audio", "Where downloaded recordings are kept")
	cmd.MarkFlagsMutuallyExclusive("file", "conversation-id")
	cmd.MarkFlagsOneRequired("file", "conversation-id")
	return cmd
}

func runEvaluate(cmd *cobra.Command, root *rootOptions, opts *evaluateOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.prompt != "" {
		cfg.Paths.RubricPrompt = opts.prompt
	}
	if opts.resultsDir != "" {
		cfg.Paths.ResultsDir = opts.resultsDir
	}

	proc, closeLLM, err := processor.FromConfig(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeLLM()

	var res processor.Result
	if opts.file != "" {
		doc, rerr := readDocument(cmd.InOrStdin(), opts.file)
		if rerr != nil {
			return rerr
		}
		res, err = proc.ProcessDocument(cmd.Context(), doc)
	} else {
		if opts.audio {
			proc.AudioDir = opts.audioDir
		}
		res, err = proc.ProcessConversation(cmd.Context(), opts.conversationID, opts.audio)
	}
	if perr := printJSON(cmd.OutOrStdout(), res); perr != nil {
		return errors.Join(err, perr)
	}
	return err
}
