package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "swiftcodes",
		Short:         "SWIFT/BIC bank code registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newLoadCmd(&configPath),
		newMigrateCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var loadFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			// Override config with command line flags if provided
			if loadFile != "" {
				a.cfg.Data.SwiftCodesFile = loadFile
				a.cfg.Data.AutoLoad = true
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&loadFile, "load", "", "Path to SWIFT codes CSV file to load before serving")
	return cmd
}

func newLoadCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <csv-file>",
		Short: "Import SWIFT codes from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.loader.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rows=%d inserted=%d duplicates=%d skipped=%d rejected=%d\n",
				report.Rows, report.Inserted, report.Duplicates, report.Skipped, report.Rejected)
			return nil
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Opening the database applies pending migrations.
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			a.logger.Info("schema is up to date", "dialect", string(a.db.Dialect))
			return nil
		},
	}
}
