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

package apis

// Detail is one structured fact attached to an error.
type Detail struct {
	// Type classifies the detail, e.g. "extra" or "limit".
	Type string `json:"type,omitempty"`

	// Field names what the detail is about, e.g. "size".
	Field string `json:"field,omitempty"`

	// Reason is a short explanation for this detail alone.
	Reason string `json:"reason,omitempty"`

	// Info carries string-valued data that survives JSON and proto.
	Info map[string]string `json:"info,omitempty"`
}
