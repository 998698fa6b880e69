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
	"encoding"
	"encoding/binary"
	"math"

	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
)

const (
	// HeaderSize is the size of a chunk header in bytes.
	HeaderSize = 8

	// Alignment is the boundary chunk data is padded to.
	Alignment = 8

	// BeginOSReason tags buffers that carry termination reason payloads.
	BeginOSReason uint32 = 0x53A20900
)

var (
	reasonInit    = reason.MustParse("tlv.init")
	reasonReserve = reason.MustParse("tlv.reserve")
	reasonWrite   = reason.MustParse("tlv.write")
)

var _ encoding.BinaryMarshaler = (*Buffer)(nil)

// Addr is a byte offset into a Buffer's arena, as returned by Reserve.
type Addr uint32

// Buffer is an append-only chunk arena over caller-provided bytes.
//
// A Buffer is not safe for concurrent use; its owner serializes access.
type Buffer struct {
	base     []byte
	capacity uint32
	cursor   uint32
	beginTag uint32
}

// New returns a Buffer over base tagged BeginOSReason.
func New(base []byte) (*Buffer, error) {
	b := &Buffer{}
	if err := b.Init(base, BeginOSReason); err != nil {
		return nil, err
	}
	return b, nil
}

// Init resets b to an empty arena over base and stamps beginTag.
//
// base must be able to hold at least one chunk header and its length must
// fit in 32 bits; anything else is an encoding error. base is expected to
// be zeroed, since padding bytes are never written.
func (b *Buffer) Init(base []byte, beginTag uint32) error {
	if uint64(len(base)) > math.MaxUint32 {
		return oserr.Errorf(code.Encoding, reasonInit, "buffer of %d bytes exceeds 32-bit capacity", len(base))
	}
	if len(base) < HeaderSize {
		return oserr.Errorf(code.Encoding, reasonInit, "buffer of %d bytes cannot hold a chunk header", len(base))
	}
	*b = Buffer{
		base:     base,
		capacity: uint32(len(base)),
		beginTag: beginTag,
	}
	return nil
}

// Reserve claims space for one chunk of the given type and data length,
// writes its header and returns the Addr where length bytes of data go.
//
// When the chunk does not fit, Reserve returns a no_space error and the
// cursor is unchanged.
func (b *Buffer) Reserve(typ, length uint32) (Addr, error) {
	if b == nil || b.base == nil {
		return 0, oserr.ErrInvalidArgument.WithReason(reasonReserve).WithMessage("reserve on uninitialized buffer")
	}
	need := SizeFor(length)
	if uint64(b.cursor)+need > uint64(b.capacity) {
		return 0, oserr.E(code.NoSpace, "chunk does not fit",
			oserr.WithReasonOption(reasonReserve),
			oserr.WithDetailOption("type", typ),
			oserr.WithDetailOption("need", need),
			oserr.WithDetailOption("remaining", b.Remaining()),
		)
	}
	hdr := b.base[b.cursor : b.cursor+HeaderSize]
	binary.LittleEndian.PutUint32(hdr[0:4], typ)
	binary.LittleEndian.PutUint32(hdr[4:8], length)
	addr := Addr(b.cursor + HeaderSize)
	b.cursor += uint32(need)
	return addr, nil
}

// Write copies data to addr. It fails with out_of_range when the target
// region is not inside the arena.
func (b *Buffer) Write(addr Addr, data []byte) error {
	if b == nil || b.base == nil {
		return oserr.ErrInvalidArgument.WithReason(reasonWrite).WithMessage("write on uninitialized buffer")
	}
	end := uint64(addr) + uint64(len(data))
	if end > uint64(b.capacity) {
		return oserr.E(code.OutOfRange, "write outside buffer",
			oserr.WithReasonOption(reasonWrite),
			oserr.WithDetailOption("addr", uint32(addr)),
			oserr.WithDetailOption("length", len(data)),
			oserr.WithDetailOption("capacity", b.capacity),
		)
	}
	copy(b.base[addr:], data)
	return nil
}

// Append reserves a chunk sized for data and writes it.
func (b *Buffer) Append(typ uint32, data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return oserr.Errorf(code.NoSpace, reasonReserve, "chunk of %d bytes exceeds 32-bit length", len(data))
	}
	addr, err := b.Reserve(typ, uint32(len(data)))
	if err != nil {
		return err
	}
	return b.Write(addr, data)
}

// BeginTag returns the tag stamped by Init.
func (b *Buffer) BeginTag() uint32 { return b.beginTag }

// Capacity returns the arena size in bytes.
func (b *Buffer) Capacity() uint32 { return b.capacity }

// Cursor returns the number of committed bytes.
func (b *Buffer) Cursor() uint32 { return b.cursor }

// Remaining returns the number of uncommitted bytes.
func (b *Buffer) Remaining() uint32 { return b.capacity - b.cursor }

// Bytes returns the committed region. It aliases the arena and is only
// valid until the owner replaces or frees the buffer.
func (b *Buffer) Bytes() []byte { return b.base[:b.cursor:b.cursor] }

// Chunks decodes the committed chunks in append order. Chunk data aliases
// the arena.
func (b *Buffer) Chunks() ([]Chunk, error) {
	return decodeChunks(b.Bytes())
}

// MarshalBinary returns the framed payload: begin tag, committed length,
// then the committed chunks.
func (b *Buffer) MarshalBinary() ([]byte, error) {
	out := make([]byte, FrameHeaderSize+int(b.cursor))
	binary.LittleEndian.PutUint32(out[0:4], b.beginTag)
	binary.LittleEndian.PutUint32(out[4:8], b.cursor)
	copy(out[FrameHeaderSize:], b.base[:b.cursor])
	return out, nil
}

// SizeFor returns the arena bytes one chunk of length data bytes consumes.
func SizeFor(length uint32) uint64 {
	return HeaderSize + align(uint64(length))
}

// EstimateSize returns an arena size large enough for items chunks whose
// data lengths add up to payload bytes, whatever the split. It saturates
// at math.MaxUint32.
func EstimateSize(items int, payload uint32) uint32 {
	if items <= 0 {
		return 0
	}
	n := uint64(items)*(HeaderSize+Alignment-1) + uint64(payload)
	if items == 1 {
		n = SizeFor(payload)
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

func align(n uint64) uint64 {
	return (n + Alignment - 1) &^ (Alignment - 1)
}
