package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/priyxstudio/pub/config"
)

func newConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "configure <key> <value>",
		Short:   "Sets a value in the configuration file, keeping its comments.",
		Example: "  pub configure generator.model gpt-4o-2024-08-06\n  pub configure modules.auto_fix_interval 60",
		Args:    cobra.ExactArgs(2),
		PreRun: func(cmd *cobra.Command, args []string) {
			log.SetHandler(cli.Default)
		},
		Run: configureCmdRun,
	}
}

func configureCmdRun(_ *cobra.Command, args []string) {
	path, err := filepath.Abs(configPath)
	if err != nil {
		log.WithField("error", err).Fatal("failed to get path to config file")
	}
	if err := config.SetValue(path, args[0], args[1]); err != nil {
		log.WithField("error", err).Fatal("failed to update configuration")
	}
	fmt.Printf("Set %s in %s\n", args[0], path)
}
