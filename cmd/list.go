package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/priyxstudio/pub/config"
	"github.com/priyxstudio/pub/internal/database"
	"github.com/priyxstudio/pub/modules"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the stored modules and their state without starting the server.",
		PreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			log.SetHandler(cli.Default)
		},
		Run: listCmdRun,
	}
}

func listCmdRun(*cobra.Command, []string) {
	all, err := storedModules()
	if err != nil {
		log.WithField("error", err).Fatal("failed to read stored modules")
	}
	if len(all) == 0 {
		fmt.Println("No modules are stored.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tVALUES\tEVENTS")
	for _, data := range all {
		iface := data.Definition.Interface
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", iface.Name, stateLabel(data.State()), strings.Join(iface.Values, ", "), strings.Join(iface.Events, ", "))
	}
	_ = w.Flush()
}

func stateLabel(s modules.State) string {
	switch s {
	case modules.StateValid:
		return color.GreenString(s.String())
	case modules.StatePending:
		return color.YellowString(s.String())
	default:
		return color.RedString(s.String())
	}
}

// storedModules opens the database directly and reads every module record.
func storedModules() ([]modules.ModuleData, error) {
	if err := database.Initialize(config.Get().System.RootDirectory); err != nil {
		return nil, err
	}
	return modules.NewDatabaseStore(database.Instance()).GetAll()
}
