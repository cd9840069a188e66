// Package pkguid provides helpers for generating unique identifiers.
//
// Callers depend on StringID so the ID strategy stays swappable: UUIDv7 for
// correlation and event IDs, Snowflake for run IDs that read well in URLs.
package pkguid
