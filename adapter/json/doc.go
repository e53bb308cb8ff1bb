// Package json adapts the analyzer's wire formats to and from JSON
// payloads supplied by collaborators, with jsonc preprocessing for
// comment and trailing-comma tolerance.
package json
