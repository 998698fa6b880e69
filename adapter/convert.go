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

// Package adapter projects errors and records into the serializable shapes
// defined in package apis.
package adapter

import (
	"encoding/hex"

	"dirpx.dev/osreason"
	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
	"dirpx.dev/osreason/tlv"
)

var reasonChunk = reason.MustParse("adapter.chunk")

// ToDescriptor pairs e with its resolved transport status.
func ToDescriptor(e *oserr.Error, st apis.Status) apis.ErrorDescriptor {
	if e == nil {
		return apis.ErrorDescriptor{}
	}
	return apis.ErrorDescriptor{
		Code:       string(e.Code),
		Reason:     string(e.Reason),
		HTTPStatus: st.HTTP,
		GRPCCode:   int(st.GRPC),
		Message:    e.Message,
	}
}

// Describe resolves err through m. Errors without an *oserr.Error in their
// chain are reported as internal.
func Describe(err error, m apis.Mapper) apis.ErrorDescriptor {
	if err == nil {
		return apis.ErrorDescriptor{}
	}
	e, _ := oserr.As(err)
	return ToDescriptor(e, m.Status(e.Code, e.Reason))
}

// ToView exposes e as is; callers redact if needed.
func ToView(e *oserr.Error) apis.ErrorView {
	if e == nil {
		return apis.ErrorView{}
	}
	return apis.ErrorView{
		Code:    string(e.Code),
		Reason:  string(e.Reason),
		Message: e.Message,
		Details: e.ErrorDetails(),
	}
}

// ToRecordView decodes the payload of s into chunk views.
func ToRecordView(s osreason.Snapshot) (apis.RecordView, error) {
	v := apis.RecordView{
		Namespace: s.Namespace,
		Code:      s.Code,
		Flags:     s.Flags,
		Capacity:  s.Capacity,
	}
	if s.Payload == nil {
		return v, nil
	}
	f, err := tlv.Decode(s.Payload)
	if err != nil {
		return apis.RecordView{}, err
	}
	v.BeginTag = f.BeginTag
	v.Chunks = ChunkViews(f.Chunks)
	return v, nil
}

// ChunkViews converts decoded chunks, hex encoding their data.
func ChunkViews(chunks []tlv.Chunk) []apis.ChunkView {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]apis.ChunkView, len(chunks))
	for i, c := range chunks {
		out[i] = apis.ChunkView{
			Type:   c.Type,
			Length: uint32(len(c.Data)),
			Data:   hex.EncodeToString(c.Data),
		}
	}
	return out
}

// FromChunkViews is the inverse of ChunkViews.
func FromChunkViews(views []apis.ChunkView) ([]tlv.Chunk, error) {
	out := make([]tlv.Chunk, len(views))
	for i, v := range views {
		data, err := hex.DecodeString(v.Data)
		if err != nil {
			return nil, oserr.E(code.Encoding, "chunk data is not hex",
				oserr.WithReasonOption(reasonChunk),
				oserr.WithDetailOption("index", i),
				oserr.WithCauseOption(err),
			)
		}
		if v.Length != 0 && int(v.Length) != len(data) {
			return nil, oserr.Errorf(code.Encoding, reasonChunk, "chunk %d declares %d bytes, carries %d", i, v.Length, len(data))
		}
		out[i] = tlv.Chunk{Type: v.Type, Data: data}
	}
	return out, nil
}
