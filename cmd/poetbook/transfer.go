package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/poetbook/collection"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as JSON or YAML",
		Long: `Write every poem, newest first, in the same shape the admin export
produces. With -o and no --format the format follows the file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := collection.FormatFromPath(out)
			if format != "" {
				var err error
				if f, err = collection.ParseFormat(format); err != nil {
					return err
				}
			}

			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			poems := app.Store.List()
			if out == "" {
				return collection.Encode(cmd.OutOrStdout(), poems, f)
			}
			if err := writeExport(out, poems, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d poems to %s\n", len(poems), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml")
	return cmd
}

// writeExport encodes poems to path and reports a failed close.
func writeExport(path string, poems []collection.Poem, f collection.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := collection.Encode(file, poems, f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collection with the poems in a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			poems, err := collection.Decode(file, collection.FormatFromPath(args[0]))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Store.Replace(cmd.Context(), poems); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d poems\n", len(poems))
			return nil
		},
	}
}

func newDeployCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy <dir>",
		Short: "Write the public site to a directory as static files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Snapshot(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "site written to %s\n", args[0])
			return nil
		},
	}
}

