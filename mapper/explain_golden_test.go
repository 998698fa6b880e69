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

package mapper

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"google.golang.org/grpc/codes"

	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/reason"
)

// Regenerate with: go test ./mapper -run Explain_Golden -update
func TestExplain_Golden(t *testing.T) {
	m, err := New(
		WithHTTPPrefix(code.OutOfMemory, "heap.alloc", 507),
		WithGRPCPrefix(code.OutOfMemory, "heap", codes.Unavailable),
		WithHTTPOverride(code.Released, 404),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := strings.Join([]string{
		m.Explain(code.OutOfMemory, mustReason("heap.alloc.timeout")),
		m.Explain(code.Released, reason.Empty),
		m.Explain(code.Code("bogus_code"), reason.Empty),
	}, "\n---\n") + "\n"

	g := goldie.New(t)
	g.Assert(t, "explain", []byte(got))
}
