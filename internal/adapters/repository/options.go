// Package repository persists the organisation records that scoring context
// is resolved from.
package repository

import "github.com/talenti/fitscore/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueryLogging turns on gorm's own SQL logging. Off by default.
func WithQueryLogging(enabled bool) Option {
	return func(s *Store) {
		s.queryLogging = enabled
	}
}
