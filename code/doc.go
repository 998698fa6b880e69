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

// Package code defines the machine codes osreason attaches to every failure.
//
// A code is the coarse answer to "what went wrong": the argument was bad,
// memory was not available, the payload ran out of room. Codes are short,
// lowercase, underscore-separated identifiers so they survive JSON, proto
// and log pipelines unchanged.
//
// The empty code is never valid. Use Parse on untrusted input and the
// predeclared constants everywhere else.
package code
