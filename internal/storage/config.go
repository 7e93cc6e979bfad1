package storage

import (
	"github.com/sirupsen/logrus"

	"kvlite/internal/metrics"
)

// Config configures store behavior.
type Config struct {
	// CompactAfter is the number of set operations after which the log is
	// compacted. Compaction runs when the counter exceeds this value, and
	// only on set; remove never triggers it.
	CompactAfter int
	// SyncWrites forces an fsync after every append. Off by default: a
	// completed write is as durable as the OS makes it.
	SyncWrites bool
	// Logger receives operational events. Defaults to the standard logrus
	// logger when nil.
	Logger logrus.FieldLogger
	// Metrics receives operation counts and log-size observations.
	// Nil disables recording.
	Metrics *metrics.Metrics
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		CompactAfter: 100,
		SyncWrites:   false,
	}
}
