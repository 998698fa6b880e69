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

// Package pool provides the fixed-capacity slot allocator records come from.
//
// A Pool is a free-list of indices into an arena the caller owns. It never
// grows: when every index is taken, Acquire waits for a Release (or for its
// context to end) and TryAcquire fails at once.
package pool

import (
	"context"
	"fmt"

	"go.uber.org/atomic"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
)

var reasonExhausted = reason.MustParse("pool.exhausted")

var _ apis.IndexPool = (*Pool)(nil)

// Pool hands out indices in [0, Cap()). Safe for concurrent use.
type Pool struct {
	free  chan int
	taken []atomic.Bool
	inUse atomic.Int64
}

// New returns a Pool of size indices, all free.
func New(size int) (*Pool, error) {
	if size <= 0 {
		return nil, oserr.Errorf(code.InvalidArgument, reason.MustParse("pool.new"), "pool size must be positive, got %d", size)
	}
	p := &Pool{
		free:  make(chan int, size),
		taken: make([]atomic.Bool, size),
	}
	for i := 0; i < size; i++ {
		p.free <- i
	}
	return p, nil
}

// Acquire returns a free index, waiting until one is released or ctx ends.
// A context that ends first yields an out_of_memory error wrapping ctx.Err().
func (p *Pool) Acquire(ctx context.Context) (int, error) {
	select {
	case i := <-p.free:
		return p.take(i), nil
	default:
	}
	select {
	case i := <-p.free:
		return p.take(i), nil
	case <-ctx.Done():
		return 0, oserr.E(code.OutOfMemory, "no free record slot",
			oserr.WithReasonOption(reasonExhausted),
			oserr.WithDetailOption("capacity", p.Cap()),
			oserr.WithCauseOption(ctx.Err()),
		)
	}
}

// TryAcquire returns a free index without waiting.
func (p *Pool) TryAcquire() (int, bool) {
	select {
	case i := <-p.free:
		return p.take(i), true
	default:
		return 0, false
	}
}

// Release returns i to the pool. Releasing an index that is not taken
// panics: it means two owners believed they held the same slot.
func (p *Pool) Release(i int) {
	if i < 0 || i >= len(p.taken) {
		panic(fmt.Sprintf("pool: release of out-of-range index %d", i))
	}
	if !p.taken[i].CompareAndSwap(true, false) {
		panic(fmt.Sprintf("pool: double release of index %d", i))
	}
	p.inUse.Dec()
	p.free <- i
}

// Cap returns the number of indices.
func (p *Pool) Cap() int { return len(p.taken) }

// InUse returns the number of indices currently handed out.
func (p *Pool) InUse() int { return int(p.inUse.Load()) }

func (p *Pool) take(i int) int {
	p.taken[i].Store(true)
	p.inUse.Inc()
	return i
}
