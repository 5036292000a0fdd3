// Package commands implements the CLI commands for normcache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/normcache/internal/app"
	"go.trai.ch/normcache/internal/build"
	"go.trai.ch/normcache/internal/core/domain"
)

// CLI represents the command line interface for normcache.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Write(ctx context.Context, opts app.WriteOptions) (domain.MergeResult, error)
	Read(ctx context.Context, opts app.ReadOptions) (*domain.ReadResult, error)
	Dump(ctx context.Context, opts app.Options) (map[domain.CacheKey]*domain.Record, error)
	Reachable(ctx context.Context, opts app.Options) ([]domain.CacheKey, error)
	Remove(ctx context.Context, opts app.RemoveOptions) (int, error)
	Clear(ctx context.Context, opts app.Options) error
	GC(ctx context.Context, opts app.GCOptions) (app.GCResult, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "normcache",
		Short:         "Inspect and maintain a normalized query cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", domain.ConfigFileName, "Path to the cache configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every record store call")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(
		c.newWriteCmd(),
		c.newReadCmd(),
		c.newDumpCmd(),
		c.newReachableCmd(),
		c.newRemoveCmd(),
		c.newClearCmd(),
		c.newGCCmd(),
		c.newVersionCmd(),
	)

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func options(cmd *cobra.Command) app.Options {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return app.Options{ConfigPath: configPath, Verbose: verbose}
}
