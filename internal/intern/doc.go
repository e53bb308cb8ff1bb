// Package intern provides interned identifier names.
//
// Protocol analysis compares and orders state, role, command and event
// names constantly; interning makes equality a handle comparison and keeps
// one canonical copy of each string. Canonicalization applies Unicode NFC
// so visually identical identifiers from different sources agree.
package intern
