package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"robocall-qa-go/internal/stt/google"
)

func newTranscribeCommand(root *rootOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "transcribe <recording.mp3>",
		Short: "Transcribe a short call recording with Google Speech-to-Text",
		Long: `Transcribe a call recording with Google Speech-to-Text.

Uses Application Default Credentials. The synchronous API accepts about one
minute of audio; longer recordings are rejected by the service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if lang != "" {
				cfg.STT.LanguageCode = lang
			}
			audio, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			tr, err := google.New(cmd.Context(), cfg.STT)
			if err != nil {
				return err
			}
			defer tr.Close()

			text, err := tr.Transcribe(cmd.Context(), audio)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "language", "", "BCP-47 language code (default from config)")
	return cmd
}
