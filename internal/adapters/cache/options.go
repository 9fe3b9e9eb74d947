// Package cache implements the local durable state.
package cache

import (
	"github.com/okian/raspa/pkg/logger"
)

// RecordCacheOption applies a configuration option to the RecordCache.
type RecordCacheOption func(*RecordCache)

// WithRecordLogger sets a custom logger for the record cache.
func WithRecordLogger(l logger.Logger) RecordCacheOption {
	return func(c *RecordCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// PrizeCacheOption applies a configuration option to the PrizeCache.
type PrizeCacheOption func(*PrizeCache)

// WithPrizeLogger sets a custom logger for the prize cache.
func WithPrizeLogger(l logger.Logger) PrizeCacheOption {
	return func(c *PrizeCache) {
		if l != nil {
			c.logger = l
		}
	}
}
