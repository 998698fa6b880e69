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
	"google.golang.org/grpc/codes"

	"dirpx.dev/osreason/code"
)

// Option adjusts a Mapper before it is built.
type Option func(*config)

type config struct {
	http *table[int]
	grpc *table[codes.Code]
}

// WithHTTPDefault replaces the default HTTP status for c.
func WithHTTPDefault(c code.Code, status int) Option {
	return func(cfg *config) { cfg.http.defaults[c] = status }
}

// WithGRPCDefault replaces the default gRPC status for c.
func WithGRPCDefault(c code.Code, status codes.Code) Option {
	return func(cfg *config) { cfg.grpc.defaults[c] = status }
}

// WithHTTPOverride pins the HTTP status for c regardless of reason.
func WithHTTPOverride(c code.Code, status int) Option {
	return func(cfg *config) { cfg.http.override[c] = status }
}

// WithGRPCOverride pins the gRPC status for c regardless of reason.
func WithGRPCOverride(c code.Code, status codes.Code) Option {
	return func(cfg *config) { cfg.grpc.override[c] = status }
}

// WithHTTPPrefix maps reasons of c starting with prefix to status. "*"
// stands for one segment; the longest matching prefix wins.
func WithHTTPPrefix(c code.Code, prefix string, status int) Option {
	return func(cfg *config) { cfg.http.addPrefix(c, prefix, status) }
}

// WithGRPCPrefix is WithHTTPPrefix for gRPC.
func WithGRPCPrefix(c code.Code, prefix string, status codes.Code) Option {
	return func(cfg *config) { cfg.grpc.addPrefix(c, prefix, status) }
}
