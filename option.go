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
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/osreason/apis"
)

// Option customizes a Subsystem.
type Option func(*options)

type options struct {
	logger     log.Logger
	registerer prometheus.Registerer
	heap       apis.ByteHeap
	pool       apis.IndexPool
	abort      func(error)
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegisterer registers the subsystem metrics with reg. By default
// metrics are created but not registered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithHeap replaces the byte heap built from Config.HeapBytes.
func WithHeap(h apis.ByteHeap) Option {
	return func(o *options) { o.heap = h }
}

// WithPool replaces the slot pool built from Config.MaxRecords. The
// subsystem allocates one record slot per index of p.
func WithPool(p apis.IndexPool) Option {
	return func(o *options) { o.pool = p }
}

// WithAbort sets the function MustSetDescriptionData calls when attaching
// data fails. The default panics with the error. The function is expected
// not to return.
func WithAbort(fn func(error)) Option {
	return func(o *options) { o.abort = fn }
}
