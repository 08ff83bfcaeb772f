package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conductor-oss/tomd"
	"github.com/conductor-oss/tomd/internal/config"
	"github.com/conductor-oss/tomd/internal/logging"
)

type convertOptions struct {
	output        string
	verbose       bool
	extension     string
	noFrontMatter bool
	logFormat     string
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <source>",
		Short: "Convert a file, URL or stdin (\"-\") to Markdown",
		Long: `Convert a local file, an http(s) URL, or standard input ("-") to Markdown.

Exit codes:
  0  success
  1  any other error (bad arguments, fetch failure, IO)
  2  unsupported format: every converter declined
  3  conversion failure: a converter accepted the input but failed

Examples:
  tomd convert report.pdf
  tomd convert https://en.wikipedia.org/wiki/Go_(programming_language) -o go.md -v
  cat page.php | tomd convert - -e html --no-frontmatter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write Markdown to FILE instead of stdout")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log converter attempts and a status line to stderr")
	cmd.Flags().StringVarP(&opts.extension, "extension", "e", "", "file extension hint tried before any detected one")
	cmd.Flags().BoolVar(&opts.noFrontMatter, "no-frontmatter", false, "omit the YAML front matter block")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "text", "log format on stderr: text or json")
	return cmd
}

func runConvert(cmd *cobra.Command, source string, opts convertOptions) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	v := config.New()
	if err := v.BindPFlag("log_format", cmd.Flags().Lookup("log-format")); err != nil {
		return err
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Verbose: opts.verbose,
		JSON:    cfg.LogFormat == "json",
		Output:  cmd.ErrOrStderr(),
	})

	engineOpts := []tomd.Option{
		tomd.WithLogger(logger),
		tomd.WithUserAgent(cfg.UserAgent),
		tomd.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		tomd.WithKeepDataURIs(cfg.KeepDataURIs),
	}
	if cfg.Extended {
		engineOpts = append(engineOpts, tomd.WithExtendedConverters())
	}
	engine := tomd.New(engineOpts...)

	hints := tomd.ConvertHints{FileExtension: opts.extension}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result *tomd.ConversionResult
	if source == "-" {
		result, err = engine.ConvertReader(cmd.InOrStdin(), hints)
	} else {
		result, err = engine.Convert(ctx, source, hints)
	}
	if err != nil {
		return err
	}

	content := result.Markdown
	if cfg.FrontMatter && !opts.noFrontMatter {
		fm, err := renderFrontMatter(source, opts.extension, result, time.Now())
		if err != nil {
			return err
		}
		content = fm + content
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if opts.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}

	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(opts.output, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Converted %s -> %s\n", source, opts.output)
	}
	return nil
}
