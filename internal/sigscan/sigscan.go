// Package sigscan walks a process's readable memory regions looking for a
// fixed byte signature, returning the remote address of the first match.
// This is the ASLR-resistant anchor the rest of the pointer chain is
// derived from.
package sigscan

import (
	"bytes"

	"osuwatch/internal/bufpool"
	"osuwatch/internal/memmap"
)

// Pattern is the 6-byte signature the pointer walker's base anchor is
// derived from. There is no wildcard mask in the reachable code paths of
// this module; historical masked variants are not carried forward.
var Pattern = []byte{0xF8, 0x01, 0x74, 0x04, 0x83, 0x65}

// ScanChunkSize is the window stride; each window reads ScanChunkSize +
// len(Pattern) - 1 bytes so matches straddling a chunk boundary are still
// found.
const ScanChunkSize = 64 * 1024

// Reader is the minimal remote-read capability this package needs.
type Reader interface {
	Read(pid int, addr uint64, buf []byte) error
}

// RegionSource enumerates a process's readable regions. memmap.Each already
// satisfies this shape; it is expressed as a function type so tests can
// supply a synthetic region list.
type RegionSource func(pid int, fn func(memmap.Region) bool) error

// Scanner finds the first occurrence of Pattern across a process's readable
// memory.
type Scanner struct {
	Reader  Reader
	Regions RegionSource
}

// New builds a Scanner. If regions is nil, memmap.Each is used.
func New(reader Reader, regions RegionSource) *Scanner {
	if regions == nil {
		regions = memmap.Each
	}
	return &Scanner{Reader: reader, Regions: regions}
}

// Find returns the remote address of the first byte of the first match of
// Pattern in pid's readable memory, or ok=false if no readable region
// contains it. Read failures on individual windows are skipped — regions
// can race with the target's own allocator — and do not abort the overall
// scan.
func (s *Scanner) Find(pid int) (addr uint64, ok bool) {
	windowLen := ScanChunkSize + len(Pattern) - 1

	var found uint64
	var hit bool

	_ = s.Regions(pid, func(region memmap.Region) bool {
		for offset := uint64(0); offset < region.Length; offset += ScanChunkSize {
			readLen := windowLen
			if offset+uint64(readLen) > region.Length {
				readLen = int(region.Length - offset)
			}
			if readLen < len(Pattern) {
				continue
			}

			buf := bufpool.Get(bufpool.ClassScanWindow)
			window := buf[:readLen]
			err := s.Reader.Read(pid, region.Start+offset, window)
			if err != nil {
				bufpool.Put(bufpool.ClassScanWindow, buf)
				continue
			}

			idx := bytes.Index(window, Pattern)
			bufpool.Put(bufpool.ClassScanWindow, buf)
			if idx >= 0 {
				found = region.Start + offset + uint64(idx)
				hit = true
				return false
			}
		}
		return true
	})

	return found, hit
}
