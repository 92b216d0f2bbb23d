package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/radif/assetstore/internal/app"
	"github.com/radif/assetstore/internal/config"
	"github.com/radif/assetstore/internal/logging"
)

// cli carries global flags and the lazily built app into subcommands.
type cli struct {
	output   string
	timeout  time.Duration
	logLevel string

	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "assetctl",
		Short: "Manage images in the asset store",
		Long: `assetctl saves, checks, deletes and reads images through the same storage
adapter as the API server. Configuration comes from the environment
(ASSETSTORE_S3_*, AWS_*, THEMES_PATH, ...) and STORAGE_CONFIG_FILE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			level := cfg.LogLevel
			if c.logLevel != "" {
				level = c.logLevel
			}
			logging.Setup(level, true)

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.output, "output", "o", "text", "Output format (text, json)")
	root.PersistentFlags().DurationVarP(&c.timeout, "timeout", "t", 2*time.Minute, "Timeout for the whole operation")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level, overrides LOG_LEVEL")

	root.AddCommand(
		c.uploadCmd(),
		c.existsCmd(),
		c.deleteCmd(),
		c.readCmd(),
		c.planCmd(),
	)
	return root
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// print writes v as indented JSON, or text via the given formatter.
func (c *cli) print(w io.Writer, v any, text func(io.Writer)) error {
	switch c.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", c.output)
	}
}
