package intern

import (
	"strings"
	"unique"

	"golang.org/x/text/unicode/norm"
)

// Name is an interned identifier string.
//
// Names are canonicalized to Unicode NFC before interning, so two names
// that differ only in Unicode representation compare equal. Equality is
// O(1) handle comparison; ordering is value-based and total.
//
// The zero Name is valid and represents the absent identifier. It compares
// less than every non-zero Name.
type Name struct {
	h unique.Handle[string]
}

// Make interns s and returns its canonical Name.
func Make(s string) Name {
	if s == "" {
		return Name{}
	}
	return Name{h: unique.Make(norm.NFC.String(s))}
}

// Value returns the canonical string form of the name.
// Returns "" for the zero Name.
func (n Name) Value() string {
	if n.IsZero() {
		return ""
	}
	return n.h.Value()
}

// IsZero reports whether the name is unset.
func (n Name) IsZero() bool {
	return n == Name{}
}

// Compare orders names by their canonical string value.
func (n Name) Compare(o Name) int {
	if n == o {
		return 0
	}
	return strings.Compare(n.Value(), o.Value())
}
