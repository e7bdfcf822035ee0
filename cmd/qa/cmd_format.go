package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"robocall-qa-go/internal/transcript"
)

func newFormatCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "format [conversation.json]",
		Short: "Render a conversation as a time-stamped transcript",
		Long: `Render a conversation document (nested call_transcription or flat
transcript shape) as one "[Role m:ss-m:ss]: message" line per turn.
Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd.InOrStdin(), argOrEmpty(args))
			if err != nil {
				return err
			}
			lines := transcript.FormatDocument(doc)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), lines)
			}
			for _, l := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), l.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print structured lines as JSON")
	return cmd
}
