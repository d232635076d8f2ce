// Package main is a terminal front end for the chat session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the travel assistant from the terminal",
		Long: "Plain text is sent to the assistant. 'exit' ends the conversation;\n" +
			"/new, /list, /resume N and /quit manage the session.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "completion provider (openai, anthropic, mock)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name passed to the provider")
	cmd.Flags().BoolVar(&opts.plain, "no-color", false, "print replies without markdown styling")
	cmd.Flags().StringVar(&opts.personaFile, "persona", "", "YAML persona file")

	return cmd
}
