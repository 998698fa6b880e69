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

package osreason

import (
	"context"
	"math"

	"github.com/go-kit/log/level"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
	"dirpx.dev/osreason/tlv"
)

var (
	reasonAlloc       = reason.MustParse("record.alloc")
	reasonAllocSize   = reason.MustParse("record.alloc.size")
	reasonRecordNil   = reason.MustParse("record.nil")
	reasonReleased    = reason.MustParse("record.released")
	reasonDescription = reason.MustParse("record.description")
)

// Record is a handle to a termination reason record.
//
// A handle is shared by all holders of the record; AddRef and Release
// track how many there are. Once the count drops to zero every method on
// the handle reports code.Released (or the zero value for accessors).
type Record struct {
	sub  *Subsystem
	slot *slot
	idx  int
	gen  uint64
}

// Snapshot is a point-in-time copy of a record for consumers such as crash
// reporters.
type Snapshot struct {
	Namespace uint32
	Code      uint64
	Flags     uint64

	// Capacity is the payload buffer size, zero when the record has none.
	Capacity uint32

	// Payload is the framed payload (see tlv.Buffer.MarshalBinary), nil
	// when the record has none.
	Payload []byte
}

// lock locks the slot and checks that it still belongs to r.
func (r *Record) lock() (*slot, error) {
	sl := r.slot
	sl.mu.Lock()
	if sl.gen != r.gen || sl.refs == 0 {
		sl.mu.Unlock()
		return nil, oserr.ErrReleased.WithReason(reasonReleased)
	}
	return sl, nil
}

// AddRef takes another reference on r. A nil r is ignored.
func (r *Record) AddRef() error {
	if r == nil {
		return nil
	}
	sl, err := r.lock()
	if err != nil {
		return err
	}
	sl.refs++
	sl.mu.Unlock()
	return nil
}

// Release drops a reference on r. The release that drops the last one
// frees the payload and returns the slot to the pool; r is unusable
// afterwards. A nil r is ignored.
func (r *Record) Release() error {
	if r == nil {
		return nil
	}
	sl, err := r.lock()
	if err != nil {
		return err
	}
	sl.refs--
	if sl.refs > 0 {
		sl.mu.Unlock()
		return nil
	}

	r.sub.freePayloadLocked(sl)
	ns, c := sl.namespace, sl.code
	sl.gen++
	sl.namespace, sl.code, sl.flags = 0, 0, 0
	sl.mu.Unlock()

	r.sub.pool.Release(r.idx)
	r.sub.metrics.destroyed.Inc()
	r.sub.metrics.live.Dec()
	level.Debug(r.sub.logger).Log("msg", "record destroyed", "namespace", ns, "code", c)
	return nil
}

// SetFlags replaces the flag word. A nil r is ignored.
func (r *Record) SetFlags(flags uint64) error {
	if r == nil {
		return nil
	}
	sl, err := r.lock()
	if err != nil {
		return err
	}
	sl.flags = flags
	sl.mu.Unlock()
	return nil
}

// AllocBuffer replaces the payload with an empty buffer of size bytes,
// waiting for heap budget if needed (bounded by ctx and
// Config.AllocTimeout). It must not be used from code that cannot block;
// see AllocBufferNoBlock.
//
// The old payload is freed first, even if the new allocation fails. A size
// of zero just frees it. Errors: invalid_argument for a nil record or a
// size above the payload limit (the payload is then left alone),
// out_of_memory when the heap cannot serve the request, encoding when the
// bytes cannot be formatted as a buffer.
func (r *Record) AllocBuffer(ctx context.Context, size uint32) error {
	return r.allocBuffer(ctx, size, apis.Blocking)
}

// AllocBufferNoBlock is AllocBuffer for paths that must not sleep: it
// fails with out_of_memory instead of waiting.
func (r *Record) AllocBufferNoBlock(size uint32) error {
	return r.allocBuffer(context.Background(), size, apis.NoBlock)
}

func (r *Record) allocBuffer(ctx context.Context, size uint32, mode apis.AllocMode) error {
	if r == nil {
		return oserr.ErrInvalidArgument.WithReason(reasonRecordNil).WithMessage("nil record")
	}
	if err := r.checkSize(uint64(size)); err != nil {
		return err
	}
	sl, err := r.lock()
	if err != nil {
		return err
	}
	defer sl.mu.Unlock()
	return r.sub.allocPayloadLocked(ctx, sl, size, mode)
}

func (r *Record) checkSize(size uint64) error {
	if size > uint64(r.sub.maxPayload) {
		return oserr.E(code.InvalidArgument, "payload size above limit",
			oserr.WithReasonOption(reasonAllocSize),
			oserr.WithDetailOption("size", size),
			oserr.WithDetailOption("max", r.sub.maxPayload),
		)
	}
	return nil
}

// Descriptor returns the payload buffer, or nil when r is nil, released or
// has no payload.
//
// The buffer is only valid until the next AllocBuffer, SetDescriptionData
// or final Release on r, and it is not safe for concurrent use. Callers that
// share the record use WithDescriptor instead.
func (r *Record) Descriptor() *tlv.Buffer {
	if r == nil {
		return nil
	}
	sl, err := r.lock()
	if err != nil {
		return nil
	}
	defer sl.mu.Unlock()
	return sl.payload
}

// WithDescriptor calls fn with the payload buffer while holding the record
// lock, so fn may append chunks while other holders use the record. fn gets
// nil when there is no payload and must not retain the buffer.
func (r *Record) WithDescriptor(fn func(*tlv.Buffer) error) error {
	if r == nil {
		return oserr.ErrInvalidArgument.WithReason(reasonRecordNil).WithMessage("nil record")
	}
	sl, err := r.lock()
	if err != nil {
		return err
	}
	defer sl.mu.Unlock()
	return fn(sl.payload)
}

// SetDescriptionData replaces the payload with a buffer sized for exactly
// one chunk and writes data into it as a chunk of type typ. The allocation
// blocks like AllocBuffer. The whole sequence runs under the record lock.
//
// A nil r is ignored. A size above the payload limit leaves the current
// payload alone; any later failure leaves the record without one.
func (r *Record) SetDescriptionData(ctx context.Context, typ uint32, data []byte) error {
	if r == nil {
		return nil
	}
	if uint64(len(data)) > math.MaxUint32 {
		return oserr.Errorf(code.InvalidArgument, reasonAllocSize, "description of %d bytes exceeds 32-bit length", len(data))
	}
	need := tlv.SizeFor(uint32(len(data)))
	if err := r.checkSize(need); err != nil {
		return err
	}

	sl, err := r.lock()
	if err != nil {
		return err
	}
	defer sl.mu.Unlock()

	if err := r.sub.allocPayloadLocked(ctx, sl, uint32(need), apis.Blocking); err != nil {
		return err
	}
	if err := sl.payload.Append(typ, data); err != nil {
		r.sub.freePayloadLocked(sl)
		return oserr.E(oserr.CodeOf(err), "cannot write description",
			oserr.WithReasonOption(reasonDescription),
			oserr.WithCauseOption(err),
		)
	}
	return nil
}

// MustSetDescriptionData is SetDescriptionData for callers with no way to
// continue when the description cannot be recorded. On error it logs and
// hands the error to the subsystem's abort function (see WithAbort).
func (r *Record) MustSetDescriptionData(ctx context.Context, typ uint32, data []byte) {
	if err := r.SetDescriptionData(ctx, typ, data); err != nil {
		level.Error(r.sub.logger).Log("msg", "cannot record termination description", "type", typ, "len", len(data), "err", err)
		r.sub.abort(err)
	}
}

// Namespace returns the namespace r was created with, or 0 once released.
func (r *Record) Namespace() uint32 {
	ns, _, _ := r.ident()
	return ns
}

// Code returns the code r was created with, or 0 once released.
func (r *Record) Code() uint64 {
	_, c, _ := r.ident()
	return c
}

// Flags returns the current flag word, or 0 once released.
func (r *Record) Flags() uint64 {
	_, _, f := r.ident()
	return f
}

func (r *Record) ident() (uint32, uint64, uint64) {
	if r == nil {
		return 0, 0, 0
	}
	sl, err := r.lock()
	if err != nil {
		return 0, 0, 0
	}
	defer sl.mu.Unlock()
	return sl.namespace, sl.code, sl.flags
}

// Refs returns the reference count, 0 for a nil or released record.
func (r *Record) Refs() int {
	if r == nil {
		return 0
	}
	sl, err := r.lock()
	if err != nil {
		return 0
	}
	defer sl.mu.Unlock()
	return sl.refs
}

// Live reports whether r still refers to a live record.
func (r *Record) Live() bool { return r.Refs() > 0 }

// Snapshot copies the record state under its lock.
func (r *Record) Snapshot() (Snapshot, error) {
	if r == nil {
		return Snapshot{}, oserr.ErrInvalidArgument.WithReason(reasonRecordNil).WithMessage("nil record")
	}
	sl, err := r.lock()
	if err != nil {
		return Snapshot{}, err
	}
	defer sl.mu.Unlock()

	snap := Snapshot{Namespace: sl.namespace, Code: sl.code, Flags: sl.flags}
	if sl.payload != nil {
		p, err := sl.payload.MarshalBinary()
		if err != nil {
			return Snapshot{}, err
		}
		snap.Capacity = sl.payload.Capacity()
		snap.Payload = p
	}
	return snap, nil
}
