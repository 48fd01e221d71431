//go:build linux

package osbridge

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// IsAlive sends signal 0 to pid; delivery of signal 0 performs no action
// but the kernel still validates that the target exists and is
// signal-reachable.
func IsAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// ReadRemote performs a single scatter/gather read of len(buf) bytes from
// remoteAddr in pid's address space into buf. It fills buf completely or
// returns an error; there is no retry at this layer and buf is never
// resized.
func ReadRemote(pid int, remoteAddr uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	localIov := unix.Iovec{
		Base: &buf[0],
		Len:  uint64(len(buf)),
	}
	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  len(buf),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),
		uintptr(unsafe.Pointer(&localIov)),
		1,
		uintptr(unsafe.Pointer(&remoteIov)),
		1,
		0,
	)
	if errno != 0 {
		return fmt.Errorf("osbridge: process_vm_readv: %w", errno)
	}
	if int(n) != len(buf) {
		return ErrShortRead
	}
	return nil
}
