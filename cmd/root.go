package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"treeterm/internal/config"
	"treeterm/internal/observability"
)

// Version is set at build time with -ldflags "-X treeterm/cmd.Version=...".
var Version = "0.1.0"

var (
	good      = color.New(color.FgGreen)
	bad       = color.New(color.FgRed, color.Bold)
	subtle    = color.New(color.FgHiBlack)
	highlight = color.New(color.FgCyan)
)

// app carries what the persistent pre-run resolves to the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
}

// NewRootCmd builds the command tree. Each call returns a fresh tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "treeterm",
		Short:         "treeterm edits metric trees on a terminal canvas.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("starting treeterm",
				zap.String("version", Version),
				zap.String("command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			observability.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/treeterm/config.toml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newEditCmd(a),
		newExportCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	return run(ctx, NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("command failed", zap.Error(err))
		observability.Sync()
		bad.Fprint(stderr, "Error: ")
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
