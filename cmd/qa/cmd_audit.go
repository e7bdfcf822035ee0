package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"robocall-qa-go/internal/audioqa"
	"robocall-qa-go/internal/config"
	"robocall-qa-go/internal/transcript"
	"robocall-qa-go/internal/types"
)

type auditOutput struct {
	audioqa.Report
	CallDurationSecs *float64              `json:"call_duration_secs,omitempty"`
	SmilingVoice     *audioqa.SmilingVoice `json:"smiling_voice,omitempty"`
}

func newAuditCommand() *cobra.Command {
	var audioPath string
	defaults := config.Defaults().Audit
	opts := audioqa.Options{
		MaxGreetingSecs: defaults.MaxGreetingSecs,
		MinHoldSecs:     defaults.MinHoldSecs,
		MaxHoldSecs:     defaults.MaxHoldSecs,
	}

	cmd := &cobra.Command{
		Use:   "audit [conversation.json]",
		Short: "Run the timing checks: greeting latency, interruptions, hold",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd.InOrStdin(), argOrEmpty(args))
			if err != nil {
				return err
			}
			rec := doc.Resolve()
			out := auditOutput{CallDurationSecs: rec.CallDurationSecs}

			if audioPath != "" {
				f, err := os.Open(audioPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if rec.CallDurationSecs == nil {
					d, err := audioqa.AudioDuration(f)
					if err != nil {
						return err
					}
					rec.CallDurationSecs = types.Float(d)
					out.CallDurationSecs = rec.CallDurationSecs
				}
				sv, err := audioqa.DetectSmilingVoice(f)
				if err != nil && !errors.Is(err, audioqa.ErrNoProsodyModel) {
					return err
				}
				out.SmilingVoice = &sv
			}

			out.Report = audioqa.Audit(transcript.Format(rec), opts)
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&audioPath, "audio", "", "MP3 recording, used for call length and tone")
	cmd.Flags().Float64Var(&opts.MaxGreetingSecs, "max-greeting", opts.MaxGreetingSecs, "Greeting deadline in seconds")
	cmd.Flags().Float64Var(&opts.MinHoldSecs, "min-hold", opts.MinHoldSecs, "Shortest gap reported as a hold")
	cmd.Flags().Float64Var(&opts.MaxHoldSecs, "max-hold", opts.MaxHoldSecs, "Longest allowed hold in seconds")
	return cmd
}
