package ptrwalk

import (
	"encoding/binary"
	"errors"
	"testing"
)

// fakeMemory simulates a 32-bit remote process's address space as a sparse
// byte map, keyed by absolute address.
type fakeMemory map[uint64]byte

func (m fakeMemory) Read(pid int, addr uint64, buf []byte) error {
	for i := range buf {
		b, ok := m[addr+uint64(i)]
		if !ok {
			return errUnmapped
		}
		buf[i] = b
	}
	return nil
}

var errUnmapped = errors.New("ptrwalk test: address not mapped")

func putU32(mem fakeMemory, addr uint64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	for i, b := range buf {
		mem[addr+uint64(i)] = b
	}
}

func putUTF16(mem fakeMemory, addr uint64, s string) {
	for i, r := range []rune(s) {
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(r))
		mem[addr+uint64(i*2)] = buf[0]
		mem[addr+uint64(i*2)+1] = buf[1]
	}
}

// buildSnapshot constructs a remote-memory layout:
// baseAnchor -> p1 -> p2(BeatmapRecord) -> folder/file string objects.
func buildSnapshot(baseAnchor uint64, folder, file string) fakeMemory {
	mem := fakeMemory{}
	const p1 = 0x00600000
	const p2 = 0x00600100
	const folderPtr = 0x00700000
	const filePtr = 0x00700200

	putU32(mem, baseAnchor-baseToP1Offset, p1)
	putU32(mem, p1, p2)
	putU32(mem, p2+folderPtrOffset, folderPtr)
	putU32(mem, p2+filePtrOffset, filePtr)

	putU32(mem, folderPtr+stringLenOffset, uint32(len([]rune(folder))))
	putUTF16(mem, folderPtr+stringDataOffset, folder)

	putU32(mem, filePtr+stringLenOffset, uint32(len([]rune(file))))
	putUTF16(mem, filePtr+stringDataOffset, file)

	return mem
}

func TestWalkHappyPath(t *testing.T) {
	const baseAnchor = 0x4123A0
	mem := buildSnapshot(baseAnchor, "Songs", "map.osu")

	w := New(mem)
	got, err := w.Walk(1, baseAnchor)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if got != "Songs/map.osu" {
		t.Errorf("Walk() = %q, want %q", got, "Songs/map.osu")
	}
}

func TestWalkBackslashNormalization(t *testing.T) {
	const baseAnchor = 0x4123A0
	mem := buildSnapshot(baseAnchor, "Songs", `sub\folder\map.osu`)

	w := New(mem)
	got, err := w.Walk(1, baseAnchor)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if got != "Songs/sub/folder/map.osu" {
		t.Errorf("Walk() = %q, want %q", got, "Songs/sub/folder/map.osu")
	}
}

// TestWalkRejectsOversizedLength covers a corruption-rejection scenario: a
// length beyond MaxStringLen aborts before any payload byte is read.
func TestWalkRejectsOversizedLength(t *testing.T) {
	const baseAnchor = 0x4123A0
	mem := buildSnapshot(baseAnchor, "Songs", "map.osu")
	const folderPtr = 0x00700000
	putU32(mem, folderPtr+stringLenOffset, 999)

	w := New(mem)
	_, err := w.Walk(1, baseAnchor)
	if !errors.Is(err, ErrStringInvalid) {
		t.Fatalf("Walk() error = %v, want ErrStringInvalid", err)
	}
}

func TestWalkRejectsNegativeLength(t *testing.T) {
	const baseAnchor = 0x4123A0
	mem := buildSnapshot(baseAnchor, "Songs", "map.osu")
	const filePtr = 0x00700200
	var negOne int32 = -1
	putU32(mem, filePtr+stringLenOffset, uint32(negOne))

	w := New(mem)
	_, err := w.Walk(1, baseAnchor)
	if !errors.Is(err, ErrStringInvalid) {
		t.Fatalf("Walk() error = %v, want ErrStringInvalid", err)
	}
}

func TestWalkAbortsOnNullP1(t *testing.T) {
	const baseAnchor = 0x4123A0
	mem := fakeMemory{}
	putU32(mem, baseAnchor-baseToP1Offset, 0)

	w := New(mem)
	_, err := w.Walk(1, baseAnchor)
	if !errors.Is(err, ErrPointerInvalid) {
		t.Fatalf("Walk() error = %v, want ErrPointerInvalid", err)
	}
}

func TestWalkAbortsOnReadFailure(t *testing.T) {
	const baseAnchor = 0x4123A0
	mem := fakeMemory{} // nothing mapped at all

	w := New(mem)
	_, err := w.Walk(1, baseAnchor)
	if !errors.Is(err, ErrPointerInvalid) {
		t.Fatalf("Walk() error = %v, want ErrPointerInvalid", err)
	}
}
