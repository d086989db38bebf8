//go:build !linux && !darwin

package output

// DefaultLimit is a conservative ceiling where rlimits are not available.
func DefaultLimit() int {
	return fallbackLimit
}

func tooManyOpen(err error) bool {
	return false
}
