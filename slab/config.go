package slab

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/internal/region"
)

const (
	// DefaultCapacity is the number of object slots in every node.
	DefaultCapacity = 512

	// DefaultOwnerCacheSize is the number of page-to-node entries remembered
	// by Free to skip the chain walk.
	DefaultOwnerCacheSize = 256
)

// Mapper acquires a zero-filled read/write region of exactly length bytes.
// Regions are never released.
type Mapper func(length int) ([]byte, error)

// Config configures a Heap.
type Config struct {
	// Capacity is the number of object slots per node.
	// Default: DefaultCapacity
	Capacity int

	// Mapper supplies node regions.
	// Default: anonymous OS mappings (internal/region)
	Mapper Mapper

	// Logger receives bind, trace and fault records.
	// Default: the package-wide logger, which discards until initialized
	Logger *slog.Logger

	// OnFault is invoked for exhaustion, invalid free and double free.
	// Default: Abort
	OnFault FaultHandler

	// OwnerCacheSize bounds the LRU cache used to resolve freed addresses to
	// their node. Zero disables the cache.
	// Default (DefaultConfig): DefaultOwnerCacheSize
	OwnerCacheSize int
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:       DefaultCapacity,
		Mapper:         region.Map,
		OnFault:        Abort,
		OwnerCacheSize: DefaultOwnerCacheSize,
	}
}

// normalize validates c and fills unset fields.
func (c Config) normalize() (Config, error) {
	if c.Capacity < 0 {
		return c, fmt.Errorf("%w: %d", ErrBadCapacity, c.Capacity)
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Mapper == nil {
		c.Mapper = region.Map
	}
	if c.OnFault == nil {
		c.OnFault = Abort
	}
	if c.OwnerCacheSize < 0 {
		c.OwnerCacheSize = 0
	}
	return c, nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.L
}
