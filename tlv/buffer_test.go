/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package tlv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"dirpx.dev/osreason/oserr"
)

func mustNew(t *testing.T, size int) *Buffer {
	t.Helper()
	b, err := New(make([]byte, size))
	if err != nil {
		t.Fatalf("New(%d): %v", size, err)
	}
	return b
}

func TestInit(t *testing.T) {
	b := mustNew(t, 64)
	if b.Cursor() != 0 || b.Capacity() != 64 || b.BeginTag() != BeginOSReason {
		t.Fatalf("fresh buffer: cursor=%d capacity=%d tag=%#x", b.Cursor(), b.Capacity(), b.BeginTag())
	}
	for _, size := range []int{0, HeaderSize - 1} {
		if _, err := New(make([]byte, size)); !errors.Is(err, oserr.ErrEncoding) {
			t.Fatalf("New(%d) err = %v, want encoding", size, err)
		}
	}
}

func TestReserveWrite_FitsThenNoSpace(t *testing.T) {
	b := mustNew(t, 64)

	addr, err := b.Reserve(1, 16)
	if err != nil {
		t.Fatalf("Reserve(1, 16): %v", err)
	}
	if addr != HeaderSize {
		t.Fatalf("addr = %d, want %d", addr, HeaderSize)
	}
	if err := b.Write(addr, bytes.Repeat([]byte{0x5a}, 16)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if b.Cursor() != 24 {
		t.Fatalf("cursor = %d, want 24", b.Cursor())
	}

	if _, err := b.Reserve(2, 50); !errors.Is(err, oserr.ErrNoSpace) {
		t.Fatalf("Reserve(2, 50) err = %v, want no_space", err)
	}
	if b.Cursor() != 24 {
		t.Fatalf("cursor moved after failed reserve: %d", b.Cursor())
	}
}

func TestReserve_PadsToAlignment(t *testing.T) {
	b := mustNew(t, 64)
	if _, err := b.Reserve(7, 3); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if b.Cursor() != HeaderSize+Alignment {
		t.Fatalf("cursor = %d, want %d", b.Cursor(), HeaderSize+Alignment)
	}
	hdr := b.Bytes()[:HeaderSize]
	if binary.LittleEndian.Uint32(hdr[0:4]) != 7 || binary.LittleEndian.Uint32(hdr[4:8]) != 3 {
		t.Fatalf("header = % x", hdr)
	}
}

func TestReserve_ExactFit(t *testing.T) {
	b := mustNew(t, int(SizeFor(200)))
	if err := b.Append(9, bytes.Repeat([]byte{0xaa}, 200)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if b.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", b.Remaining())
	}
	if err := b.Append(1, nil); !errors.Is(err, oserr.ErrNoSpace) {
		t.Fatalf("Append on full buffer err = %v", err)
	}
}

func TestWrite_OutOfRange(t *testing.T) {
	b := mustNew(t, 32)
	tests := []struct {
		name string
		addr Addr
		n    int
	}{
		{"past end", 32, 1},
		{"straddles end", 28, 8},
		{"far away", 1 << 30, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Write(tt.addr, make([]byte, tt.n)); !errors.Is(err, oserr.ErrOutOfRange) {
				t.Fatalf("Write(%d, %d) err = %v, want out_of_range", tt.addr, tt.n, err)
			}
		})
	}
	if err := b.Write(8, make([]byte, 24)); err != nil {
		t.Fatalf("in-range write failed: %v", err)
	}
}

func TestUninitialized(t *testing.T) {
	var b Buffer
	if _, err := b.Reserve(1, 1); !errors.Is(err, oserr.ErrInvalidArgument) {
		t.Fatalf("Reserve on zero Buffer err = %v", err)
	}
	var nilBuf *Buffer
	if err := nilBuf.Write(0, []byte{1}); !errors.Is(err, oserr.ErrInvalidArgument) {
		t.Fatalf("Write on nil Buffer err = %v", err)
	}
}

// Random reserve sequences never commit more than capacity and never move
// the cursor on failure.
func TestReserve_NeverOvercommits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		capacity := HeaderSize + rng.Intn(512)
		b := mustNew(t, capacity)
		var committed uint64
		for i := 0; i < 32; i++ {
			length := uint32(rng.Intn(128))
			before := b.Cursor()
			_, err := b.Reserve(uint32(i), length)
			if err != nil {
				if !errors.Is(err, oserr.ErrNoSpace) {
					t.Fatalf("round %d: unexpected error %v", round, err)
				}
				if b.Cursor() != before {
					t.Fatalf("round %d: cursor moved %d -> %d on failure", round, before, b.Cursor())
				}
				continue
			}
			committed += SizeFor(length)
			if committed > uint64(capacity) || uint64(b.Cursor()) != committed {
				t.Fatalf("round %d: committed=%d cursor=%d capacity=%d", round, committed, b.Cursor(), capacity)
			}
		}
	}
}

func TestMarshalBinary_Decode(t *testing.T) {
	b := mustNew(t, 128)
	if err := b.Append(1, []byte("jetsam")); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(2, []byte{0xde, 0xad, 0xbe, 0xef, 0, 1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	frame, err := b.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(frame) != FrameHeaderSize+int(b.Cursor()) {
		t.Fatalf("frame length = %d", len(frame))
	}

	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.BeginTag != BeginOSReason || len(got.Chunks) != 2 {
		t.Fatalf("Decode = %+v", got)
	}
	if got.Chunks[0].Type != 1 || string(got.Chunks[0].Data) != "jetsam" {
		t.Fatalf("chunk 0 = %+v", got.Chunks[0])
	}
	if got.Chunks[1].Type != 2 || len(got.Chunks[1].Data) != 9 {
		t.Fatalf("chunk 1 = %+v", got.Chunks[1])
	}

	local, err := b.Chunks()
	if err != nil || len(local) != 2 {
		t.Fatalf("Chunks = %v, %v", local, err)
	}
}

func TestEmptyFrame_Decodes(t *testing.T) {
	p := EmptyFrame(BeginOSReason)
	if len(p) != FrameHeaderSize {
		t.Fatalf("len = %d, want %d", len(p), FrameHeaderSize)
	}
	f, err := Decode(p)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.BeginTag != BeginOSReason || len(f.Chunks) != 0 {
		t.Fatalf("got tag %#x with %d chunks", f.BeginTag, len(f.Chunks))
	}

	empty, err := mustNew(t, 32).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if !bytes.Equal(empty, p) {
		t.Fatalf("empty buffer frame %x differs from EmptyFrame %x", empty, p)
	}
}

func TestDecode_Malformed(t *testing.T) {
	b := mustNew(t, 64)
	if err := b.Append(1, []byte("abcdefgh")); err != nil {
		t.Fatal(err)
	}
	good, _ := b.MarshalBinary()

	lying := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(lying[4:8], 4)

	overrun := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(overrun[FrameHeaderSize+4:], 64)

	tests := map[string][]byte{
		"short":          good[:4],
		"length lies":    lying,
		"chunk overruns": overrun,
		"torn header":    append(append([]byte(nil), good[:4]...), 4, 0, 0, 0, 1, 2, 3, 4),
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(p); !errors.Is(err, oserr.ErrEncoding) {
				t.Fatalf("Decode err = %v, want encoding", err)
			}
		})
	}
}

func TestEstimateSize(t *testing.T) {
	if got := EstimateSize(1, 16); got != 24 {
		t.Fatalf("EstimateSize(1, 16) = %d, want 24", got)
	}
	if got := EstimateSize(0, 16); got != 0 {
		t.Fatalf("EstimateSize(0, 16) = %d", got)
	}
	// Three chunks of 1 byte each take 3*16 bytes; the estimate must cover it.
	if got := EstimateSize(3, 3); uint64(got) < 3*SizeFor(1) {
		t.Fatalf("EstimateSize(3, 3) = %d too small", got)
	}
	if got := EstimateSize(2, ^uint32(0)); got != ^uint32(0) {
		t.Fatalf("EstimateSize must saturate, got %d", got)
	}
}
