package testutil

import "fmt"

// FixedUIDs returns a source-id generator yielding "uid-1", "uid-2", ...
//
// Each call to FixedUIDs starts a new sequence, so the same test produces
// the same ids on every run. The returned function is not safe for
// concurrent use.
func FixedUIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("uid-%d", n)
	}
}
