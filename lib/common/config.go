package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Session storage engines
// --------------------------------------------------------------------------

const (
	// SessionDBMemory selects the in-memory engine for session storage.
	SessionDBMemory = "memory"
	// SessionDBNone disables session storage; the cookie backend is used.
	SessionDBNone = "none"
)

// --------------------------------------------------------------------------
// Navigation service configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the navigation service.
type ServerConfig struct {
	// HTTP api settings
	Endpoint string

	// Session storage: "memory", "none" or a path to a sqlite file
	SessionDB         string
	SessionTTLSecond  int
	SessionCookieName string

	// Interval of the periodic search client metrics log (0 = disabled)
	MetricsLogIntervalSecond int

	// Logging configuration
	LogLevel string

	// Search API client used for page boundary crossings
	Search ClientConfig
}

// SessionStorageEnabled reports whether a session storage engine is configured.
func (c *ServerConfig) SessionStorageEnabled() bool {
	return c.SessionDB != "" && c.SessionDB != SessionDBNone
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Navigation Server")
	addField("Endpoint", c.Endpoint)

	addSection("Session Storage")
	if c.SessionStorageEnabled() {
		addField("Engine", c.SessionDB)
		addField("TTL", fmt.Sprintf("%d sec", c.SessionTTLSecond))
		addField("Cookie", c.SessionCookieName)
	} else {
		addField("Engine", "disabled (cookie fallback)")
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)
	if c.MetricsLogIntervalSecond > 0 {
		addField("Metrics Log Interval", fmt.Sprintf("%d sec", c.MetricsLogIntervalSecond))
	}

	sb.WriteString(c.Search.String())
	return sb.String()
}

// --------------------------------------------------------------------------
// Search client configuration struct
// --------------------------------------------------------------------------

// DefaultDetailField is the gjson path, relative to one entry of
// result.items, that yields the item's detail URL.
const DefaultDetailField = "item.fields.system.about_uri"

type ClientConfig struct {
	// BaseURL is resolved against relative API paths
	BaseURL string
	// TimeoutSecond bounds a single request (0 = no timeout)
	TimeoutSecond int
	// DetailField is the path of the detail URL inside one result item
	DetailField string
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Search Client")
	addField("Base URL", c.BaseURL)
	if c.TimeoutSecond > 0 {
		addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	} else {
		addField("Timeout", "none")
	}
	addField("Detail Field", c.DetailField)

	return sb.String()
}
