// Package bench defines the benchmark sample formats and synthetic
// protocol-family generators used to measure subscription sizes across
// solver variants. Persisting the records is left to callers.
package bench
