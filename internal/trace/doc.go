// Package trace provides nil-safe slog helpers for the analysis packages.
//
// Loggers are optional throughout the module; a nil *slog.Logger costs a
// single nil check per call site. The lazy variants defer attribute
// construction until the level is known to be enabled.
package trace
