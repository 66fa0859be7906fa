package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eringen/poetbook"
)

// cli carries what every subcommand needs after flags are parsed.
type cli struct {
	envFile string
	cfg     poetbook.SiteConfig
	log     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "poetbook",
		Short: "A small poetry publishing engine",
		Long: `poetbook serves a collection of poems with a password-gated admin view.

Configuration comes from POETBOOK_* environment variables, optionally
loaded from an env file first:
  POETBOOK_ADMIN_PASSWORD   admin secret (required for serve)
  POETBOOK_SESSION_SECRET   cookie signing key (required for serve)
  POETBOOK_STORAGE_DRIVER   sqlite, redis, postgres or memory
  POETBOOK_DATABASE_PATH    SQLite file (default data/poetbook.db)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "env file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newDeployCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := poetbook.LoadConfig(c.envFile)
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = log
	return nil
}

// openApp opens storage and the collection without the HTTP stack.
func (c *cli) openApp(ctx context.Context) (*poetbook.App, error) {
	app := poetbook.New(c.cfg, poetbook.ViewFuncs{}, poetbook.WithLogger(c.log))
	if err := app.Open(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the poetbook version",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "poetbook %s\n", version)
		},
	}
}
