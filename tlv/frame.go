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
	"encoding/binary"

	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
)

// FrameHeaderSize is the size of the {begin tag, used} prefix written by
// MarshalBinary.
const FrameHeaderSize = 8

var reasonDecode = reason.MustParse("tlv.decode")

// Chunk is one decoded {type, length, data} unit.
type Chunk struct {
	Type uint32
	Data []byte
}

// Frame is a decoded payload.
type Frame struct {
	BeginTag uint32
	Chunks   []Chunk
}

// EmptyFrame returns the frame of a payload without chunks.
func EmptyFrame(beginTag uint32) []byte {
	out := make([]byte, FrameHeaderSize)
	binary.LittleEndian.PutUint32(out[0:4], beginTag)
	return out
}

// Decode parses a payload produced by MarshalBinary. Chunk data aliases p.
func Decode(p []byte) (*Frame, error) {
	if len(p) < FrameHeaderSize {
		return nil, oserr.Errorf(code.Encoding, reasonDecode, "frame of %d bytes is shorter than its header", len(p))
	}
	tag := binary.LittleEndian.Uint32(p[0:4])
	used := binary.LittleEndian.Uint32(p[4:8])
	body := p[FrameHeaderSize:]
	if uint64(used) != uint64(len(body)) {
		return nil, oserr.Errorf(code.Encoding, reasonDecode, "frame declares %d bytes, carries %d", used, len(body))
	}
	chunks, err := decodeChunks(body)
	if err != nil {
		return nil, err
	}
	return &Frame{BeginTag: tag, Chunks: chunks}, nil
}

func decodeChunks(p []byte) ([]Chunk, error) {
	var out []Chunk
	off := uint64(0)
	for off < uint64(len(p)) {
		if uint64(len(p))-off < HeaderSize {
			return nil, oserr.Errorf(code.Encoding, reasonDecode, "truncated chunk header at offset %d", off)
		}
		typ := binary.LittleEndian.Uint32(p[off : off+4])
		length := binary.LittleEndian.Uint32(p[off+4 : off+8])
		next := off + SizeFor(length)
		if next > uint64(len(p)) {
			return nil, oserr.Errorf(code.Encoding, reasonDecode, "chunk type %#x at offset %d overruns payload", typ, off)
		}
		start := off + HeaderSize
		out = append(out, Chunk{Type: typ, Data: p[start : start+uint64(length)]})
		off = next
	}
	return out, nil
}
