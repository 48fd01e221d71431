// Package osbridge wraps the two kernel primitives the rest of this module
// depends on: liveness via a signal-0 send, and cross-process memory reads
// via process_vm_readv. No other OS facility is used above this layer.
package osbridge

import "errors"

// ErrShortRead is returned when the kernel copies fewer bytes than
// requested. A syscall failure is returned with its errno wrapped, for
// diagnostics only; the pointer walker and signature scanner treat every
// error as a plain failure.
var ErrShortRead = errors.New("osbridge: short read")
