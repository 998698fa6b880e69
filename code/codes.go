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

package code

// Caller errors. These never depend on system state: retrying the same call
// yields the same result.
const (
	// InvalidArgument is a nil record handle, a payload size above the
	// configured maximum, or a malformed configuration value.
	//
	// Can be mapped to an HTTP 400 / gRPC InvalidArgument.
	InvalidArgument Code = "invalid_argument"

	// NoSpace means a chunk does not fit in what is left of a payload
	// buffer. The buffer is unchanged; the caller needs a larger one.
	//
	// Can be mapped to an HTTP 413 / gRPC ResourceExhausted.
	NoSpace Code = "no_space"

	// OutOfRange means a write targeted bytes outside the payload buffer.
	// Addresses handed out by Reserve never trigger it.
	//
	// Can be mapped to an HTTP 400 / gRPC OutOfRange.
	OutOfRange Code = "out_of_range"

	// Released means the handle outlived its record: the last reference
	// was dropped and the slot went back to the pool.
	//
	// Can be mapped to an HTTP 410 / gRPC FailedPrecondition.
	Released Code = "released"
)

// Resource errors. The same call may succeed later.
const (
	// OutOfMemory means the record pool or the byte heap could not satisfy
	// the request: immediately in fail-fast mode, or within the wait budget
	// in blocking mode.
	//
	// Can be mapped to an HTTP 503 / gRPC ResourceExhausted.
	OutOfMemory Code = "out_of_memory"
)

// Unexpected errors.
const (
	// Encoding means the payload format rejected a buffer the heap handed
	// out, or a framed payload could not be decoded.
	//
	// Can be mapped to an HTTP 500 / gRPC DataLoss.
	Encoding Code = "encoding"

	// Internal is the fallback for anything not classified above.
	//
	// Can be mapped to an HTTP 500 / gRPC Internal.
	Internal Code = "internal"
)

var known = map[Code]struct{}{
	InvalidArgument: {},
	NoSpace:         {},
	OutOfRange:      {},
	Released:        {},
	OutOfMemory:     {},
	Encoding:        {},
	Internal:        {},
}
