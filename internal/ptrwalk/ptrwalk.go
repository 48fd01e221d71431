// Package ptrwalk performs the fixed dereference chain from the signature
// anchor to the beatmap record's folder/file strings.
package ptrwalk

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"osuwatch/internal/beatmap"
	"osuwatch/internal/bufpool"
)

// Fixed offsets into the BeatmapRecord. All pointer values are unsigned
// 32-bit addresses in the remote (32-bit) process's address space; they
// are widened to uint64 immediately on read and never sign-extended.
const (
	// baseToP1Offset is subtracted from BaseAnchor to find p1
	// ("base_anchor - 0x0C").
	baseToP1Offset   = 0x0C
	folderPtrOffset  = 0x78
	filePtrOffset    = 0x90
	stringLenOffset  = 0x04
	stringDataOffset = 0x08

	// MaxStringLen is the character-count cap on a decoded string; anything
	// larger is treated as corruption, not read.
	MaxStringLen = 256
)

// ErrPointerInvalid covers every "abort the walk" case: a failed read, or
// a null dereference, at any step.
var ErrPointerInvalid = errors.New("ptrwalk: pointer invalid")

// ErrStringInvalid means a decoded length was <= 0 or > MaxStringLen.
var ErrStringInvalid = errors.New("ptrwalk: string invalid")

// Reader is the minimal remote-read capability this package needs.
type Reader interface {
	Read(pid int, addr uint64, buf []byte) error
}

// Walker walks the fixed chain from a cached BaseAnchor to a beatmap.Report.
type Walker struct {
	Reader Reader
}

// New builds a Walker over reader.
func New(reader Reader) *Walker {
	return &Walker{Reader: reader}
}

// Walk performs the fixed dereference chain and returns the joined
// relative path. Any read failure at any step aborts the whole walk with
// ErrPointerInvalid; the caller (the control loop) treats that as its
// signal to discard BaseAnchor and re-scan.
func (w *Walker) Walk(pid int, baseAnchor uint64) (string, error) {
	p1, err := w.readPointer(pid, baseAnchor-baseToP1Offset)
	if err != nil || p1 == 0 {
		return "", ErrPointerInvalid
	}

	p2, err := w.readPointer(pid, p1)
	if err != nil || p2 == 0 {
		return "", ErrPointerInvalid
	}

	folderPtr, err := w.readPointer(pid, p2+folderPtrOffset)
	if err != nil {
		return "", ErrPointerInvalid
	}
	filePtr, err := w.readPointer(pid, p2+filePtrOffset)
	if err != nil {
		return "", ErrPointerInvalid
	}

	folderLen, err := w.readLength(pid, folderPtr)
	if err != nil {
		return "", err
	}
	fileLen, err := w.readLength(pid, filePtr)
	if err != nil {
		return "", err
	}

	folder, err := w.readUTF16String(pid, folderPtr, folderLen)
	if err != nil {
		return "", ErrPointerInvalid
	}
	file, err := w.readUTF16String(pid, filePtr, fileLen)
	if err != nil {
		return "", ErrPointerInvalid
	}

	return beatmap.Join(folder, file), nil
}

func (w *Walker) readPointer(pid int, addr uint64) (uint64, error) {
	buf := bufpool.Get(bufpool.ClassPointer)
	defer bufpool.Put(bufpool.ClassPointer, buf)

	word := buf[:4]
	if err := w.Reader.Read(pid, addr, word); err != nil {
		return 0, err
	}
	// Read as unsigned so remote addresses above 2GiB don't sign-extend
	// into garbage 64-bit pointers.
	return uint64(binary.LittleEndian.Uint32(word)), nil
}

// readLength reads the 4-byte character count at ptr+stringLenOffset and
// enforces the cap before any payload byte is touched.
func (w *Walker) readLength(pid int, ptr uint64) (int, error) {
	buf := bufpool.Get(bufpool.ClassPointer)
	defer bufpool.Put(bufpool.ClassPointer, buf)

	word := buf[:4]
	if err := w.Reader.Read(pid, ptr+stringLenOffset, word); err != nil {
		return 0, ErrPointerInvalid
	}

	length := int32(binary.LittleEndian.Uint32(word))
	if length <= 0 || length > MaxStringLen {
		return 0, ErrStringInvalid
	}
	return int(length), nil
}

func (w *Walker) readUTF16String(pid int, ptr uint64, length int) (string, error) {
	byteLen := length * 2
	if byteLen > bufpool.MaxStringBytes {
		return "", fmt.Errorf("ptrwalk: length %d exceeds buffer capacity", length)
	}

	buf := bufpool.Get(bufpool.ClassString)
	defer bufpool.Put(bufpool.ClassString, buf)

	payload := buf[:byteLen]
	if err := w.Reader.Read(pid, ptr+stringDataOffset, payload); err != nil {
		return "", err
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(payload)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
