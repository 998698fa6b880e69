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

// Package apis holds the small contracts shared across osreason packages.
//
// It has interfaces for classified errors, for the two memory collaborators
// the record core consumes (an index pool for record slots and a byte heap
// for payloads), for the transport status mapper, and the flat view types
// adapters serialize. It must stay dependency-light: no concrete record or
// buffer types live here.
package apis
