package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobmatch-backend/internal/shared/telemetry"
)

const app = "matchctl"

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MATCHCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           app,
		Short:         "matchctl scores a candidate profile against a job posting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "error"
			if v.GetBool("debug") {
				level = "debug"
			}
			return telemetry.Configure(level)
		},
	}
	root.PersistentFlags().BoolP("debug", "d", false, "verbose structured logs on stdout")
	_ = v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))

	root.AddCommand(newScoreCmd(v), newTokenCmd(v), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the matchctl version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app+" "+version)
		},
	}
}
