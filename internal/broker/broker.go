// Package broker defines the privileged file-open capability the
// core depends on instead of ever calling os.OpenFile itself, per
// spec.md §6: "the core never opens devices directly." It also
// supplies a direct, non-privileged implementation for standalone use
// and tests, matching how a privileged caller (a setuid helper, a
// logind session) would plug in its own.
package broker

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Opener is the DeviceOpener capability from spec.md §6.
type Opener interface {
	// OpenRestricted opens path with flags and returns its file
	// descriptor, or a non-nil error on failure.
	OpenRestricted(path string, flags int) (fd int, err error)
	// CloseRestricted closes a descriptor previously returned by
	// OpenRestricted.
	CloseRestricted(fd int)
}

// Direct opens device nodes with a plain, unprivileged unix.Open
// call. It is the default Opener for standalone and test use; a
// logind/udev-backed host supplies its own Opener that proxies
// through a privileged helper instead.
type Direct struct{}

func (Direct) OpenRestricted(path string, flags int) (int, error) {
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", path, err)
	}
	return fd, nil
}

func (Direct) CloseRestricted(fd int) {
	_ = unix.Close(fd)
}

// OpenNonblockRDWR is the flag combination device create uses per
// spec.md §4.6 ("open through the privileged broker in non-blocking
// mode").
const OpenNonblockRDWR = unix.O_RDWR | unix.O_NONBLOCK | unix.O_CLOEXEC

var _ Opener = Direct{}
