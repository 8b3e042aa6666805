package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"treeterm/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and where it was read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, v, err := config.LoadWithViper(a.cfgFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			file := v.ConfigFileUsed()
			if file == "" {
				file = "(none, defaults and environment only)"
			}
			fmt.Fprintf(out, "%s %s\n", subtle.Sprint("config file:"), file)
			fmt.Fprintf(out, "%s %s\n\n", subtle.Sprint("config dir: "), config.ConfigDir())

			keys := v.AllKeys()
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s = %v\n", highlight.Sprint(k), v.Get(k))
			}
			return nil
		},
	}
}
