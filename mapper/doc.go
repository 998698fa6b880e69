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

// Package mapper turns a failure code and optional reason into HTTP and
// gRPC statuses.
//
// Each transport resolves in the same order:
//
//  1. an override pinned to the code;
//  2. the longest reason prefix registered for the code, where "*" stands
//     for exactly one segment;
//  3. the code default;
//  4. 500 / codes.Internal.
//
// Defaults cover every code in package code, for example no_space maps to
// 413 / ResourceExhausted and released to 410 / FailedPrecondition. A
// service that wants heap exhaustion reported differently from slot
// exhaustion can say so by reason:
//
//	m, err := mapper.New(
//	    mapper.WithHTTPPrefix(code.OutOfMemory, "heap.alloc.timeout", http.StatusGatewayTimeout),
//	)
//
// A Mapper is immutable once built and safe for concurrent use. Explain
// reports which tier matched and is meant for logs and tests.
package mapper
