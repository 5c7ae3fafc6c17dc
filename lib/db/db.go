package db

import "time"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMemory Implementation = "memory"
	ImplSQLite Implementation = "sqlite"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet          Feature = 1 << iota // Support for Set operations
	FeatureSetE                             // Support for SetE operations
	FeatureGet                              // Support for Get operations
	FeatureDelete                           // Support for Delete operations
	FeatureHas                              // Support for Has operations
	FeatureDeletePrefix                     // Support for DeletePrefix operations
	FeatureDurable                          // Data survives a process restart
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureSetE:
		return "SetE"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureDeletePrefix:
		return "DeletePrefix"
	case FeatureDurable:
		return "Durable"
	default:
		return "Unknown"
	}
}

// AllFeatures lists every single feature flag, in declaration order.
var AllFeatures = []Feature{
	FeatureSet, FeatureSetE, FeatureGet, FeatureDelete, FeatureHas, FeatureDeletePrefix, FeatureDurable,
}

type DatabaseInfo struct {
	Keys              int            `json:"keys"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for the storage engines behind session storage.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry without expiration.
	// If the key already exists, the old value and expiration are overwritten.
	Set(key string, value []byte) (err error)

	// SetE inserts or updates an entry that expires after expireIn.
	// An expireIn of zero means no expiration.
	SetE(key string, value []byte, expireIn time.Duration) (err error)

	// Delete removes an entry with the specified key.
	// Deleting a missing key is not an error.
	Delete(key string) (err error)

	// DeletePrefix removes every entry whose key starts with prefix and
	// returns the number of removed entries.
	DeletePrefix(prefix string) (removed int, err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a (not expired) value was found.
	// The returned slice is a copy and safe to modify.
	Get(key string) (value []byte, loaded bool, err error)

	// Has checks whether a not expired entry exists for key.
	Has(key string) (loaded bool, err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close releases all resources held by the database.
	Close() (err error)
}

// FeatureList expands a feature bitmask into its single flags.
func FeatureList(mask Feature) []Feature {
	var features []Feature
	for _, f := range AllFeatures {
		if mask&f == f {
			features = append(features, f)
		}
	}
	return features
}
