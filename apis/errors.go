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

// CodedError is an error classified by a machine-readable code from
// package code, e.g. "no_space" or "out_of_memory".
//
// Adapters treat an empty or unknown code as an internal error.
type CodedError interface {
	error

	// ErrorCode returns the canonical code. Never empty.
	ErrorCode() string
}

// ReasonedError narrows a code down to the component and step that failed,
// e.g. "tlv.reserve" or "heap.alloc.timeout".
type ReasonedError interface {
	error

	// ErrorReason returns the reason, or "" when none was recorded.
	ErrorReason() string
}

// DetailedError exposes structured details such as requested and available
// sizes. The returned slice must not be modified by the caller.
type DetailedError interface {
	error

	// ErrorDetails returns the details, or nil.
	ErrorDetails() []Detail
}
