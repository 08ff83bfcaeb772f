package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tomd",
		Short: "Convert files and web pages to Markdown",
		Long: `tomd converts local files, URLs and piped input into normalized Markdown.

It tries a prioritized chain of format converters (PDF, YouTube, Wikipedia,
HTML, plain text and, unless disabled, CSV, notebooks, feeds, spreadsheets
and ZIP archives) until one succeeds.

Configuration is read from ./tomd.yaml or ~/.config/tomd/tomd.yaml and from
TOMD_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (default: ./tomd.yaml or ~/.config/tomd/tomd.yaml)")
	root.AddCommand(newConvertCmd())
	return root
}
