package cmd

import (
	"fmt"
	"os"

	"github.com/delving/itemnav/cmd/nav"
	"github.com/delving/itemnav/cmd/serve"
	"github.com/delving/itemnav/cmd/store"
	"github.com/spf13/cobra"
)

const (
	Version = "0.4.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "itemnav",
		Short: "step through search results item by item",
		Long: fmt.Sprintf(`itemnav (v%s)

Item level navigation for search result lists: step from one item detail
page to the previous or next result without loading the full list, crossing
page boundaries of the paginated search API on demand.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of itemnav",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("itemnav v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(nav.NavCommands)
	RootCmd.AddCommand(store.StoreCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
