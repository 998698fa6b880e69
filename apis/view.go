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

package apis

// ErrorView is the serializable shape of an error sent to clients.
type ErrorView struct {
	Code    string   `json:"code"`
	Reason  string   `json:"reason,omitempty"`
	Message string   `json:"message,omitempty"`
	Details []Detail `json:"details,omitempty"`
}

// RecordView is the serializable shape of a termination reason record, as
// emitted into a crash report.
type RecordView struct {
	Namespace uint32 `json:"namespace"`
	Code      uint64 `json:"code"`
	Flags     uint64 `json:"flags"`

	// BeginTag identifies the payload kind. Zero when there is no payload.
	BeginTag uint32 `json:"begin_tag,omitempty"`

	// Capacity is the payload buffer size in bytes. Zero without payload.
	Capacity uint32 `json:"capacity,omitempty"`

	// Chunks lists the committed payload chunks in append order.
	Chunks []ChunkView `json:"chunks,omitempty"`
}

// ChunkView is one payload chunk.
type ChunkView struct {
	Type   uint32 `json:"type" yaml:"type"`
	Length uint32 `json:"length" yaml:"length"`
	// Data is the chunk payload, hex encoded.
	Data string `json:"data" yaml:"data"`
}
