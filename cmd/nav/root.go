package nav

import (
	"github.com/delving/itemnav/cmd/util"
	"github.com/delving/itemnav/lib/common"
	"github.com/delving/itemnav/lib/search"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	profile *util.Profile

	// NavCommands represents the nav command group
	NavCommands = &cobra.Command{
		Use:   "nav",
		Short: "Step through search results from the command line",
		Long: util.WrapString(`Step through search results one item at a time. The navigation state is kept in a local profile directory,
the way a browser keeps it in its session storage or cookies.`),
		PersistentPreRunE:  setupProfile,
		PersistentPostRunE: closeProfile,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	util.SetupProfileFlags(NavCommands)
	util.SetupSearchClientFlags(NavCommands, 10)

	// Add subcommands
	NavCommands.AddCommand(rememberCmd)
	NavCommands.AddCommand(showCmd)
	NavCommands.AddCommand(nextCmd)
	NavCommands.AddCommand(prevCmd)
	NavCommands.AddCommand(forgetCmd)
}

// setupProfile opens the profile store
func setupProfile(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	var err error
	profile, err = util.OpenProfile()
	return err
}

// closeProfile persists the profile
func closeProfile(_ *cobra.Command, _ []string) error {
	defer common.Sync()
	return profile.Close()
}

// newClient creates the search client of boundary crossings
func newClient() (*search.Client, error) {
	return search.NewClient(util.GetClientConfig())
}
