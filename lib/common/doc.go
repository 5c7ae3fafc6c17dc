// Package common provides configuration structures and logging utilities
// shared by the itemnav command-line tools, the HTTP service and the
// library packages.
//
// Key Components:
//
//   - ServerConfig: Configuration for the navigation HTTP service, including
//     the listen endpoint, the session storage engine, the session cookie and
//     the embedded search client configuration.
//
//   - ClientConfig: Configuration for the search API client (base URL,
//     timeout and the field path that yields an item's detail URL).
//
//   - Logger: A logger factory for Dragonboat's logger package that writes
//     through zap. Packages obtain named loggers with logger.GetLogger and
//     InitLoggers installs the factory and the levels once at startup.
package common
