package store

import (
	"github.com/delving/itemnav/cmd/util"
	"github.com/delving/itemnav/lib/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	profile *util.Profile

	// StoreCommands represents the store command group
	StoreCommands = &cobra.Command{
		Use:                "store",
		Short:              "Inspect the key-value store of the local profile",
		PersistentPreRunE:  setupProfile,
		PersistentPostRunE: closeProfile,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	util.SetupProfileFlags(StoreCommands)

	// Add subcommands
	StoreCommands.AddCommand(getCmd)
	StoreCommands.AddCommand(setCmd)
	StoreCommands.AddCommand(rmCmd)
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
