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

import "context"

// AllocMode selects how a memory collaborator behaves when it cannot satisfy
// a request right away.
type AllocMode int

const (
	// Blocking may suspend the caller until memory is returned or the
	// context ends.
	Blocking AllocMode = iota

	// NoBlock fails immediately. Use it from paths that must not sleep,
	// such as code already reacting to memory pressure.
	NoBlock
)

func (m AllocMode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case NoBlock:
		return "noblock"
	default:
		return "unknown"
	}
}

// ByteHeap hands out zeroed byte slices for record payloads.
//
// Alloc returns a slice of exactly size bytes or an error with code
// out_of_memory. Free must be called once per successful Alloc with the
// same slice. Implementations are shared by all records of a subsystem and
// must be safe for concurrent use.
type ByteHeap interface {
	Alloc(ctx context.Context, size uint32, mode AllocMode) ([]byte, error)
	Free(b []byte)
}

// IndexPool is a fixed-capacity free-list of slot indices in [0, Cap()).
//
// Acquire blocks until an index is free or ctx ends; TryAcquire never
// blocks. Release returns an index previously handed out.
type IndexPool interface {
	Acquire(ctx context.Context) (int, error)
	TryAcquire() (int, bool)
	Release(i int)
	Cap() int
}
