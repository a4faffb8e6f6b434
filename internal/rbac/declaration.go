package rbac

import (
	"slices"
	"strings"
)

// Declaration is the ordered set of roles a protected operation accepts.
// An empty declaration places no restriction on the caller.
type Declaration []string

// Require declares the roles allowed to run an operation. Duplicates are
// dropped, order is kept.
func Require(roles ...string) Declaration {
	d := make(Declaration, 0, len(roles))
	for _, r := range roles {
		if r == "" || slices.Contains(d, r) {
			continue
		}
		d = append(d, r)
	}
	return d
}

func (d Declaration) Unrestricted() bool { return len(d) == 0 }

func (d Declaration) Allows(role string) bool {
	return slices.Contains(d, role)
}

func (d Declaration) String() string {
	return "[" + strings.Join(d, ", ") + "]"
}

// Unknown lists declared roles that no identity can hold, e.g. a
// mis-cased "admin". Such entries never match.
func (d Declaration) Unknown() []string {
	var out []string
	for _, r := range d {
		if !IsKnown(r) {
			out = append(out, r)
		}
	}
	return out
}
