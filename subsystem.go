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
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/heap"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/pool"
	"dirpx.dev/osreason/reason"
	"dirpx.dev/osreason/tlv"
)

var reasonCreate = reason.MustParse("record.create")

// Subsystem owns the record slots and the payload heap. Records from
// different subsystems never share memory.
type Subsystem struct {
	cfg        Config
	maxPayload uint32

	slots []slot
	pool  apis.IndexPool
	heap  apis.ByteHeap

	logger  log.Logger
	metrics *metrics
	abort   func(error)
}

// slot is the pooled storage behind a Record. mu guards every field; gen
// advances each time the slot is torn down so stale handles can be told
// apart from the current occupant.
type slot struct {
	mu   sync.Mutex
	gen  uint64
	refs int

	namespace uint32
	code      uint64
	flags     uint64

	// buf backs payload; both are nil when the record has no payload.
	buf     []byte
	payload *tlv.Buffer
}

// New builds a Subsystem from cfg.
func New(cfg Config, opts ...Option) (*Subsystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{
		logger: log.NewNopLogger(),
		abort:  func(err error) { panic(err) },
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.pool == nil {
		p, err := pool.New(cfg.MaxRecords)
		if err != nil {
			return nil, err
		}
		o.pool = p
	}
	if o.heap == nil {
		h, err := heap.New(cfg.HeapBytes)
		if err != nil {
			return nil, err
		}
		o.heap = h
	}

	s := &Subsystem{
		cfg:        cfg,
		maxPayload: cfg.payloadLimit(),
		slots:      make([]slot, o.pool.Cap()),
		pool:       o.pool,
		heap:       o.heap,
		logger:     log.With(o.logger, "component", "osreason"),
		metrics:    newMetrics(o.registerer),
		abort:      o.abort,
	}
	registerHeapGauge(o.registerer, o.heap)
	return s, nil
}

// MaxPayload returns the effective per-record payload limit.
func (s *Subsystem) MaxPayload() uint32 { return s.maxPayload }

// Create returns a new record with one reference, zero flags and no
// payload. When every slot is live it waits for a release, bounded by ctx
// and Config.CreateTimeout; running out of time is an out_of_memory error.
func (s *Subsystem) Create(ctx context.Context, namespace uint32, c uint64) (*Record, error) {
	if s.cfg.CreateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CreateTimeout)
		defer cancel()
	}
	idx, err := s.pool.Acquire(ctx)
	if err != nil {
		level.Warn(s.logger).Log("msg", "record slot wait failed", "namespace", namespace, "code", c, "err", err)
		return nil, asOutOfMemory(err, reasonCreate)
	}
	return s.occupy(idx, namespace, c), nil
}

// TryCreate is Create without waiting: it fails with out_of_memory as soon
// as no slot is free.
func (s *Subsystem) TryCreate(namespace uint32, c uint64) (*Record, error) {
	idx, ok := s.pool.TryAcquire()
	if !ok {
		return nil, oserr.E(code.OutOfMemory, "no free record slot",
			oserr.WithReasonOption(reason.MustParse("pool.exhausted")),
			oserr.WithDetailOption("capacity", s.pool.Cap()),
		)
	}
	return s.occupy(idx, namespace, c), nil
}

func (s *Subsystem) occupy(idx int, namespace uint32, c uint64) *Record {
	sl := &s.slots[idx]
	sl.mu.Lock()
	sl.refs = 1
	sl.namespace = namespace
	sl.code = c
	sl.flags = 0
	sl.buf, sl.payload = nil, nil
	gen := sl.gen
	sl.mu.Unlock()

	s.metrics.created.Inc()
	s.metrics.live.Inc()
	return &Record{sub: s, slot: sl, idx: idx, gen: gen}
}

// freePayloadLocked drops the payload of sl. sl.mu must be held.
func (s *Subsystem) freePayloadLocked(sl *slot) {
	if sl.buf != nil {
		s.heap.Free(sl.buf)
	}
	sl.buf, sl.payload = nil, nil
}

// allocPayloadLocked replaces the payload of sl with a fresh buffer of
// size bytes. sl.mu must be held; it stays held across the heap call so a
// concurrent reader never sees a half-replaced payload.
func (s *Subsystem) allocPayloadLocked(ctx context.Context, sl *slot, size uint32, mode apis.AllocMode) error {
	s.freePayloadLocked(sl)
	if size == 0 {
		return nil
	}

	if mode == apis.Blocking && s.cfg.AllocTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AllocTimeout)
		defer cancel()
	}
	b, err := s.heap.Alloc(ctx, size, mode)
	if err != nil {
		err = asOutOfMemory(err, reasonAlloc)
		s.metrics.allocFailures.WithLabelValues(mode.String(), string(code.OutOfMemory)).Inc()
		level.Warn(s.logger).Log("msg", "payload allocation failed", "size", size, "mode", mode, "err", err)
		return err
	}

	buf, err := tlv.New(b)
	if err != nil {
		s.heap.Free(b)
		s.metrics.allocFailures.WithLabelValues(mode.String(), string(code.Encoding)).Inc()
		level.Warn(s.logger).Log("msg", "payload buffer init failed", "size", size, "err", err)
		return oserr.E(code.Encoding, "cannot initialize payload buffer",
			oserr.WithReasonOption(reasonAlloc),
			oserr.WithCauseOption(err),
		)
	}
	sl.buf, sl.payload = b, buf
	return nil
}

// asOutOfMemory keeps out_of_memory errors as they are and classifies
// anything else from a collaborator as out_of_memory with the given reason.
func asOutOfMemory(err error, r reason.Reason) error {
	if oserr.CodeOf(err) == code.OutOfMemory {
		return err
	}
	return oserr.E(code.OutOfMemory, "allocation failed",
		oserr.WithReasonOption(r),
		oserr.WithCauseOption(err),
	)
}
