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

// Package tlv implements the payload buffer attached to a termination reason
// record: an append-only, bounds-checked arena of tagged chunks.
//
// Each chunk is an 8-byte little-endian header {type uint32, length uint32}
// followed by length bytes of data, zero-padded to an 8-byte boundary.
// Chunks are only ever appended. Writing one is two-phase: Reserve claims
// header plus padded space and returns the Addr of the data region, Write
// fills it. Only Reserve can fail for lack of room, and it fails before any
// byte is committed, so a half-written chunk is never observable.
//
// The begin tag identifies the buffer kind to generic consumers. It is not
// part of the arena; it is emitted in front of the chunks by MarshalBinary:
//
//	+-----------+-----------+------------------------------+
//	| begin u32 | used u32  | chunk | chunk | ...          |
//	+-----------+-----------+------------------------------+
package tlv
