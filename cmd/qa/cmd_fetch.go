package main

import (
	"os"

	"github.com/spf13/cobra"

	"robocall-qa-go/internal/elevenlabs"
)

func newFetchCommand(root *rootOptions) *cobra.Command {
	var outPath, audioPath string
	cmd := &cobra.Command{
		Use:   "fetch <conversation-id>",
		Short: "Download a conversation document (and optionally its audio)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			client := elevenlabs.New(cfg.ElevenLabs)

			_, raw, err := client.GetConversationDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
			} else {
				err = os.WriteFile(outPath, raw, 0o644)
			}
			if err != nil {
				return err
			}

			if audioPath == "" {
				return nil
			}
			audio, err := client.GetConversationAudio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return os.WriteFile(audioPath, audio, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the conversation JSON here instead of stdout")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Also save the call recording (MP3) to this path")
	return cmd
}
