package cmd

import (
	"os"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportArgs struct {
	output string
}

// exportedModule is the YAML shape of an exported module definition.
type exportedModule struct {
	Name        string   `yaml:"name"`
	Values      []string `yaml:"values,omitempty"`
	Events      []string `yaml:"events,omitempty"`
	Description string   `yaml:"description"`
}

func newExportCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "export",
		Short: "Writes the definitions of the stored modules as YAML.",
		PreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			log.SetHandler(cli.Default)
		},
		Run: exportCmdRun,
	}

	command.Flags().StringVarP(&exportArgs.output, "output", "o", "", "write to this file instead of stdout")

	return command
}

func exportCmdRun(*cobra.Command, []string) {
	all, err := storedModules()
	if err != nil {
		log.WithField("error", err).Fatal("failed to read stored modules")
	}

	out := make([]exportedModule, 0, len(all))
	for _, data := range all {
		def := data.Definition
		out = append(out, exportedModule{
			Name:        def.Name(),
			Values:      def.Interface.Values,
			Events:      def.Interface.Events,
			Description: def.Description,
		})
	}

	b, err := yaml.Marshal(map[string]any{"modules": out})
	if err != nil {
		log.WithField("error", errors.WithStack(err)).Fatal("failed to encode module definitions")
	}
	if exportArgs.output == "" {
		_, _ = os.Stdout.Write(b)
		return
	}
	if err := os.WriteFile(exportArgs.output, b, 0o600); err != nil {
		log.WithField("error", err).Fatal("failed to write module definitions")
	}
	log.WithField("modules", len(out)).WithField("path", exportArgs.output).Info("exported module definitions")
}
