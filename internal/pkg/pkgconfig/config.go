package pkgconfig

import "io"

// Config reads typed configuration values by dotted key.
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetFloat(key string) float64
	GetString(key string) string
	// GetArray returns the trimmed, non-blank entries of a list value.
	GetArray(key string) []string
	io.Closer
}
