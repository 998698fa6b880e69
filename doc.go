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

// Package osreason records why a process, task or subsystem terminated or
// misbehaved.
//
// A Record carries an opaque namespace and code identifying the kind of
// termination, a flag word, and an optional payload: a tlv.Buffer the
// detecting code appends diagnostic chunks to. Records are reference
// counted. Whoever creates a record holds the first reference; anyone it
// hands the record to takes another with AddRef; each holder drops its
// reference with Release, and the last Release tears the record down.
// There is no other way to destroy a record.
//
// Records and payload bytes come from a Subsystem, which owns a fixed pool
// of record slots and a budgeted byte heap:
//
//	sub, err := osreason.New(osreason.DefaultConfig())
//	...
//	r, err := sub.Create(ctx, nsJetsam, codeHighWater)
//	if err != nil {
//	    return err
//	}
//	defer r.Release()
//	if err := r.SetDescriptionData(ctx, kindProcName, []byte("backupd")); err != nil {
//	    // the record is still valid, just without a payload
//	}
//
// All methods accept a nil *Record. Operations without a result ignore it;
// operations that must produce something report invalid_argument. A handle
// used after its record was destroyed reports released and never touches
// the slot's next occupant.
package osreason
