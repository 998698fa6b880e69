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

// Package heap provides the byte allocator record payloads are carved from.
//
// A Heap enforces a byte budget shared by every record of a subsystem. In
// Blocking mode Alloc waits for other payloads to be freed until its context
// ends; in NoBlock mode it fails immediately when the budget is spent.
// Requests larger than the whole budget fail at once in either mode.
package heap

import (
	"context"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
)

var (
	reasonAlloc   = reason.MustParse("heap.alloc")
	reasonTimeout = reason.MustParse("heap.alloc.timeout")
	reasonBudget  = reason.MustParse("heap.alloc.budget")
)

var _ apis.ByteHeap = (*Heap)(nil)

// Heap is a budgeted byte allocator. Safe for concurrent use.
type Heap struct {
	limit int64
	sem   *semaphore.Weighted
	inUse atomic.Int64
}

// New returns a Heap that hands out at most limit bytes at a time.
func New(limit int64) (*Heap, error) {
	if limit <= 0 {
		return nil, oserr.Errorf(code.InvalidArgument, reason.MustParse("heap.new"), "heap limit must be positive, got %d", limit)
	}
	return &Heap{limit: limit, sem: semaphore.NewWeighted(limit)}, nil
}

// Alloc returns size zeroed bytes.
func (h *Heap) Alloc(ctx context.Context, size uint32, mode apis.AllocMode) ([]byte, error) {
	n := int64(size)
	if n == 0 {
		return nil, oserr.Errorf(code.InvalidArgument, reasonAlloc, "zero-size allocation")
	}
	if n > h.limit {
		return nil, oserr.E(code.OutOfMemory, "request exceeds heap budget",
			oserr.WithReasonOption(reasonBudget),
			oserr.WithDetailOption("size", size),
			oserr.WithDetailOption("limit", h.limit),
		)
	}
	switch mode {
	case apis.NoBlock:
		if !h.sem.TryAcquire(n) {
			return nil, oserr.E(code.OutOfMemory, "heap budget exhausted",
				oserr.WithReasonOption(reasonAlloc),
				oserr.WithDetailOption("size", size),
				oserr.WithDetailOption("in_use", h.inUse.Load()),
			)
		}
	default:
		if err := h.sem.Acquire(ctx, n); err != nil {
			return nil, oserr.E(code.OutOfMemory, "heap budget not released in time",
				oserr.WithReasonOption(reasonTimeout),
				oserr.WithDetailOption("size", size),
				oserr.WithCauseOption(err),
			)
		}
	}
	h.inUse.Add(n)
	return make([]byte, size), nil
}

// Free returns b's bytes to the budget. b must come from Alloc on h.
func (h *Heap) Free(b []byte) {
	if len(b) == 0 {
		return
	}
	n := int64(len(b))
	h.inUse.Sub(n)
	h.sem.Release(n)
}

// InUse returns the number of bytes currently allocated.
func (h *Heap) InUse() int64 { return h.inUse.Load() }

// Limit returns the budget.
func (h *Heap) Limit() int64 { return h.limit }
