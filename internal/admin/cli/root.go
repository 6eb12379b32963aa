// Package cli implements fishadmin, the operator command line for a
// fishtank store. It opens the same snapshot store as the server, so it
// should be run while the server is stopped.
package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server"
	"github.com/dmitrijs2005/fishtank/internal/server/config"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand. They are
// translated into server flags so the config layering stays the same.
type options struct {
	configFile string
	driver     string
	dataFile   string
	sqlitePath string
	dsn        string

	lookupEnv func(string) (string, bool)
}

func (o *options) args() []string {
	var args []string
	add := func(flag, v string) {
		if v != "" {
			args = append(args, flag, v)
		}
	}
	add("-c", o.configFile)
	add("-driver", o.driver)
	add("-f", o.dataFile)
	add("-sqlite", o.sqlitePath)
	add("-d", o.dsn)
	return args
}

// withCore loads the config, opens the store, runs fn and closes the store.
func (o *options) withCore(cmd *cobra.Command, fn func(ctx context.Context, core *server.Core) error) error {
	cfg, err := config.Load(o.args(), o.lookupEnv)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logging.New(cmd.ErrOrStderr(), "text", "warn")
	core, err := server.OpenCore(ctx, cfg, log, nil)
	if err != nil {
		return err
	}

	runErr := fn(ctx, core)
	if err := core.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// NewRootCommand builds the fishadmin command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.LookupEnv)
}

func newRootCommand(lookupEnv func(string) (string, bool)) *cobra.Command {
	o := &options{lookupEnv: lookupEnv}

	root := &cobra.Command{
		Use:           "fishadmin",
		Short:         "Administer a fishtank store",
		Long:          "fishadmin manages admin accounts and moderation state of a fishtank store.\nRun it while the server is stopped.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "server config file (.json, .yaml)")
	pf.StringVar(&o.driver, "driver", "", "storage driver: file, sqlite, postgres, s3")
	pf.StringVar(&o.dataFile, "data-file", "", "JSON data file (file driver)")
	pf.StringVar(&o.sqlitePath, "sqlite", "", "SQLite database path (sqlite driver)")
	pf.StringVar(&o.dsn, "dsn", "", "PostgreSQL DSN (postgres driver)")

	root.AddCommand(
		newCreateAdminCommand(o),
		newPromoteCommand(o),
		newClearTankCommand(o),
		newExportCommand(o),
	)
	return root
}

// Execute runs fishadmin with os.Args.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
