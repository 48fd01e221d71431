// Package bufpool centralizes the scratch buffers the core needs, so it
// avoids per-tick allocation for pointer reads, scan windows, and UTF-16
// string payloads. Buffers are rented and must be returned on every exit
// path, including failure paths, via Put (deferred, or called on each
// path).
package bufpool

import "sync"

// Class identifies which reuse pool a buffer belongs to.
type Class int

const (
	// ClassPointer is an 8-byte buffer, enough for a 32-bit or 64-bit
	// pointer/length read.
	ClassPointer Class = iota
	// ClassScanWindow holds ScanChunkSize + patternLen - 1 bytes.
	ClassScanWindow
	// ClassString holds up to 512 bytes (256 UTF-16LE characters).
	ClassString
)

const (
	pointerSize    = 8
	scanWindowSize = 64*1024 + 5 // ScanChunkSize + patternLen - 1, patternLen == 6
	// MaxStringBytes is the largest payload a ClassString buffer can hold:
	// 256 UTF-16LE characters.
	MaxStringBytes = 512
)

var pools = map[Class]*sync.Pool{
	ClassPointer: {
		New: func() any { return make([]byte, pointerSize) },
	},
	ClassScanWindow: {
		New: func() any { return make([]byte, scanWindowSize) },
	},
	ClassString: {
		New: func() any { return make([]byte, MaxStringBytes) },
	},
}

// Get rents a buffer of the given class, sized exactly for that class's
// use. Callers must call Put with the same class and the same slice (or a
// slice sharing its backing array) when done.
func Get(class Class) []byte {
	buf := pools[class].Get().([]byte)
	return buf
}

// Put returns a buffer to its pool. It re-slices back to full capacity so
// a caller that shrank the slice via a sub-slice doesn't shrink the pooled
// buffer permanently.
func Put(class Class, buf []byte) {
	pools[class].Put(buf[:cap(buf)])
}
