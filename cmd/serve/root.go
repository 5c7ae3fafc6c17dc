package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdUtil "github.com/delving/itemnav/cmd/util"
	"github.com/delving/itemnav/lib/common"
	"github.com/delving/itemnav/lib/db"
	"github.com/delving/itemnav/lib/db/engines/memory"
	"github.com/delving/itemnav/lib/db/engines/sqlite"
	"github.com/delving/itemnav/lib/search"
	"github.com/delving/itemnav/lib/store/selector"
	"github.com/delving/itemnav/web"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the navigation service",
		Long:    `Start the navigation service with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is ITEMNAV_<flag> (e.g. ITEMNAV_SESSION_DB=memory)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the navigation service will listen"))

	key = "session-db"
	ServeCmd.PersistentFlags().String(key, common.SessionDBMemory, cmdUtil.WrapString("Session storage engine: 'memory', 'none' (cookies only) or the path of a sqlite file"))

	key = "session-ttl"
	ServeCmd.PersistentFlags().Int(key, 3600, cmdUtil.WrapString("Seconds after the last write until a session expires"))

	key = "session-cookie"
	ServeCmd.PersistentFlags().String(key, web.DefaultSessionCookieName, cmdUtil.WrapString("Name of the cookie binding a browser to its session"))

	key = "metrics-log-interval"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Seconds between logs of the search client metrics (0 = disabled)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	cmdUtil.SetupSearchClientFlags(ServeCmd, 10)
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.SessionDB = viper.GetString("session-db")
	serveCmdConfig.SessionTTLSecond = viper.GetInt("session-ttl")
	serveCmdConfig.SessionCookieName = viper.GetString("session-cookie")
	serveCmdConfig.MetricsLogIntervalSecond = viper.GetInt("metrics-log-interval")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Search = cmdUtil.GetClientConfig()

	if serveCmdConfig.SessionTTLSecond < 0 {
		return fmt.Errorf("session-ttl must not be negative")
	}
	if serveCmdConfig.Search.BaseURL == "" {
		return fmt.Errorf("search-url is required")
	}
	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	return nil
}

// run starts the navigation service
func run(cmd *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	defer common.Sync()

	log := logger.GetLogger("cmd")
	log.Infof("starting navigation service with config:\n%s", serveCmdConfig)

	database, err := openSessionDB(serveCmdConfig)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}
	sel := selector.New(database, time.Duration(serveCmdConfig.SessionTTLSecond)*time.Second)

	client, err := search.NewClient(serveCmdConfig.Search)
	if err != nil {
		return err
	}
	defer client.Close()

	if interval := serveCmdConfig.MetricsLogIntervalSecond; interval > 0 {
		go gometrics.Log(client.Registry(), time.Duration(interval)*time.Second, common.PrintfAdapter{Logger: logger.GetLogger("search")})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return web.NewServer(*serveCmdConfig, sel, client).ListenAndServe(ctx)
}

// openSessionDB opens the configured session engine, nil when disabled
func openSessionDB(config *common.ServerConfig) (db.KVDB, error) {
	if !config.SessionStorageEnabled() {
		return nil, nil
	}
	if config.SessionDB == common.SessionDBMemory {
		return memory.NewMemoryDB(memory.DefaultOptions()), nil
	}
	database, err := sqlite.OpenSQLiteDB(config.SessionDB, nil)
	if err != nil {
		return nil, fmt.Errorf("open session db %s: %w", config.SessionDB, err)
	}
	return database, nil
}

