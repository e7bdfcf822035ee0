package main

import (
	"github.com/spf13/cobra"

	"robocall-qa-go/internal/actionable"
	"robocall-qa-go/internal/aggregator"
	"robocall-qa-go/internal/dataset"
	"robocall-qa-go/internal/pipeline"
	"robocall-qa-go/internal/processor"
)

type batchSummary struct {
	Report  string                `json:"report,omitempty"`
	Insight aggregator.Insight    `json:"insight"`
	Action  actionable.ActionCard `json:"action"`
}

func newBatchCommand(root *rootOptions) *cobra.Command {
	var (
		reportPath string
		opts       pipeline.Options
	)
	cmd := &cobra.Command{
		Use:   "batch <conversations.xlsx>",
		Short: "Grade every conversation listed in a workbook",
		Long: `Grade every conversation listed in the first sheet of a workbook.

The conversation id column is detected from the header row. Conversations
are processed one at a time; failures are recorded and the batch goes on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			proc, closeLLM, err := processor.FromConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeLLM()

			b, runErr := pipeline.Run(cmd.Context(), proc, records, opts)
			if reportPath != "" {
				if err := dataset.WriteReport(reportPath, pipeline.Rows(b.Results)); err != nil {
					return err
				}
			}
			if err := printJSON(cmd.OutOrStdout(), batchSummary{Report: reportPath, Insight: b.Insight, Action: b.Action}); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&reportPath, "report", "r", "qa_report.xlsx", "Write a per-conversation report here (empty to skip)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Process at most this many rows")
	cmd.Flags().BoolVar(&opts.WithAudio, "audio", false, "Download recordings to use their length")
	return cmd
}
