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
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/reason"
)

var _ apis.Mapper = (*mapper)(nil)

// New builds an immutable Mapper seeded with the package defaults and
// adjusted by opts. It fails only on malformed prefix rules.
func New(opts ...Option) (apis.Mapper, error) {
	cfg := &config{
		http: newTable(defaultHTTP, http.StatusInternalServerError),
		grpc: newTable(defaultGRPC, codes.Internal),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.http.compile("HTTP"); err != nil {
		return nil, err
	}
	if err := cfg.grpc.compile("gRPC"); err != nil {
		return nil, err
	}
	return &mapper{http: cfg.http, grpc: cfg.grpc}, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) apis.Mapper {
	m, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Default is the Mapper with no options applied.
var Default = MustNew()

type mapper struct {
	http *table[int]
	grpc *table[codes.Code]
}

func (m *mapper) HTTPStatus(c code.Code, r reason.Reason) int {
	v, _, _ := m.http.resolve(c, r)
	return v
}

func (m *mapper) GRPCStatus(c code.Code, r reason.Reason) codes.Code {
	v, _, _ := m.grpc.resolve(c, r)
	return v
}

func (m *mapper) Status(c code.Code, r reason.Reason) apis.Status {
	return apis.Status{HTTP: m.HTTPStatus(c, r), GRPC: m.GRPCStatus(c, r)}
}

// Explain renders one line per transport, for example:
//
//	code="no_space" reason="tlv.reserve"
//	http: source=default -> 413
//	grpc: source=prefix pattern="tlv" -> RESOURCE_EXHAUSTED(8)
func (m *mapper) Explain(c code.Code, r reason.Reason) string {
	var b strings.Builder
	fmt.Fprintf(&b, "code=%q reason=%q\n", c, r)

	hv, hsrc, hpat := m.http.resolve(c, r)
	fmt.Fprintf(&b, "http: %s -> %d\n", describe(hsrc, hpat), hv)

	gv, gsrc, gpat := m.grpc.resolve(c, r)
	fmt.Fprintf(&b, "grpc: %s -> %s(%d)", describe(gsrc, gpat), grpcName(gv), int(gv))
	return b.String()
}

func describe(src Source, pattern string) string {
	if src == SourcePrefix {
		return fmt.Sprintf("source=%s pattern=%q", src, pattern)
	}
	return "source=" + string(src)
}

// grpcName returns the upper snake case name of c, e.g. RESOURCE_EXHAUSTED.
func grpcName(c codes.Code) string {
	var b strings.Builder
	var prev rune
	for _, r := range c.String() {
		if r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ToUpper(b.String())
}
