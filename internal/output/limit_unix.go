//go:build linux || darwin

package output

import (
	"errors"

	"golang.org/x/sys/unix"
)

// DefaultLimit is the soft open-file limit of the process minus what the
// inputs, the standard streams and the runtime need.
func DefaultLimit() int {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return fallbackLimit
	}
	if rl.Cur == unix.RLIM_INFINITY || rl.Cur > maxLimit+reserved {
		return maxLimit
	}
	if n := int(rl.Cur) - reserved; n > 0 {
		return n
	}
	return 1
}

func tooManyOpen(err error) bool {
	return errors.Is(err, unix.EMFILE) || errors.Is(err, unix.ENFILE)
}
