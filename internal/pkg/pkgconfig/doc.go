// Package pkgconfig provides a small abstraction for reading configuration values.
//
// Business code depends on the Config interface; Viper is the file backed
// implementation, with environment variables able to override any key.
package pkgconfig
