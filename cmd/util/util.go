package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/delving/itemnav/lib/common"
	"github.com/delving/itemnav/lib/db"
	"github.com/delving/itemnav/lib/db/engines/sqlite"
	"github.com/delving/itemnav/lib/store"
	"github.com/delving/itemnav/lib/store/cstore"
	"github.com/delving/itemnav/lib/store/selector"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cmd")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// SessionFile and CookieFile live in the profile directory
	SessionFile = "session.db"
	CookieFile  = "cookies.txt"

	// profileSessionID namespaces the single session of a profile
	profileSessionID = "profile"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and lets ITEMNAV_<FLAG> environment variables override flags
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("itemnav")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Search client flags
// --------------------------------------------------------------------------

// SetupSearchClientFlags adds the flags of the search API client to a command
func SetupSearchClientFlags(cmd *cobra.Command, timeoutDefault int) {
	key := "search-url"
	cmd.PersistentFlags().String(key, "http://localhost:8000", WrapString("Base URL of the search API, API paths of boundary crossings are resolved against it"))

	key = "search-timeout"
	cmd.PersistentFlags().Int(key, timeoutDefault, WrapString("Timeout in seconds of one search API request (0 = no timeout)"))

	key = "detail-field"
	cmd.PersistentFlags().String(key, common.DefaultDetailField, WrapString("Path of the detail URL inside one entry of result.items"))
}

// GetClientConfig reads the search client configuration from viper
func GetClientConfig() common.ClientConfig {
	return common.ClientConfig{
		BaseURL:       viper.GetString("search-url"),
		TimeoutSecond: viper.GetInt("search-timeout"),
		DetailField:   viper.GetString("detail-field"),
	}
}

// --------------------------------------------------------------------------
// Profile (the "browser" of the command line)
// --------------------------------------------------------------------------

// SetupProfileFlags adds the flags selecting the local profile to a command
func SetupProfileFlags(cmd *cobra.Command) {
	key := "profile-dir"
	cmd.PersistentFlags().String(key, defaultProfileDir(), WrapString("Directory holding the navigation state of the command line (session.db or cookies.txt)"))

	key = "no-session-storage"
	cmd.PersistentFlags().Bool(key, false, WrapString("Keep the navigation state in cookies.txt instead of session.db"))

	key = "session-ttl"
	cmd.PersistentFlags().Int(key, 0, WrapString("Seconds after the last write until the stored state expires (0 = never)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

func defaultProfileDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "itemnav")
	}
	return ".itemnav"
}

// Profile is the store of the command line together with the resources behind it
type Profile struct {
	Store store.IStore
	Dir   string

	database db.KVDB
	document *cstore.FileDocument
}

// OpenProfile opens the profile configured in viper. Session storage in
// session.db is preferred; when it is disabled or can not be opened the
// state is kept in cookies.txt.
func OpenProfile() (*Profile, error) {
	dir := viper.GetString("profile-dir")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	p := &Profile{Dir: dir}
	ttl := time.Duration(viper.GetInt("session-ttl")) * time.Second

	if !viper.GetBool("no-session-storage") {
		database, err := sqlite.OpenSQLiteDB(filepath.Join(dir, SessionFile), nil)
		if err != nil {
			Logger.Warningf("session storage unavailable, falling back to cookies: %v", err)
		} else {
			p.database = database
		}
	}

	sel := selector.New(p.database, ttl)
	if sel.Backend() == store.BackendCookie {
		doc, err := cstore.OpenFileDocument(filepath.Join(dir, CookieFile))
		if err != nil {
			p.closeDatabase()
			return nil, err
		}
		p.document = doc
		p.Store = sel.Open("", doc)
	} else {
		p.Store = sel.Open(profileSessionID, nil)
	}
	return p, nil
}

// Close writes pending cookies and closes the session database
func (p *Profile) Close() error {
	if p == nil {
		return nil
	}
	var err error
	if p.document != nil {
		err = p.document.Flush()
	}
	p.closeDatabase()
	return err
}

func (p *Profile) closeDatabase() {
	if p.database != nil {
		if err := p.database.Close(); err != nil {
			Logger.Warningf("close session storage: %v", err)
		}
		p.database = nil
	}
}
