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

// Package httpx writes errors and records as JSON HTTP responses.
package httpx

import (
	"net/http"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"dirpx.dev/osreason/adapter"
	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/oserr"
)

// Meta is request-scoped data added to an error response.
type Meta struct {
	Correlation       string
	RetryAfterSeconds int
}

// Writer renders responses, resolving error statuses through Mapper.
type Writer struct {
	Mapper apis.Mapper
}

var marshal = protojson.MarshalOptions{UseProtoNames: true}

// WriteError writes err with the status Mapper assigns to it. Errors
// without an *oserr.Error in their chain are written as internal. A nil err
// writes nothing.
func (w Writer) WriteError(rw http.ResponseWriter, err error, meta Meta) {
	if err == nil {
		return
	}
	e, _ := oserr.As(err)
	st := w.Mapper.Status(e.Code, e.Reason)

	body := errorFields(adapter.ToView(e))
	if meta.Correlation != "" {
		body["correlation"] = meta.Correlation
	}
	if meta.RetryAfterSeconds > 0 {
		rw.Header().Set("Retry-After", strconv.Itoa(meta.RetryAfterSeconds))
	}
	write(rw, st.HTTP, map[string]any{"error": body})
}

// WriteRecord writes v with status 200.
func (w Writer) WriteRecord(rw http.ResponseWriter, v apis.RecordView) {
	fields := map[string]any{
		"namespace": float64(v.Namespace),
		// Codes and flags are 64-bit; JSON numbers are not.
		"code":  strconv.FormatUint(v.Code, 10),
		"flags": strconv.FormatUint(v.Flags, 10),
	}
	if v.Capacity > 0 {
		fields["begin_tag"] = float64(v.BeginTag)
		fields["capacity"] = float64(v.Capacity)
	}
	if len(v.Chunks) > 0 {
		chunks := make([]any, len(v.Chunks))
		for i, c := range v.Chunks {
			chunks[i] = map[string]any{
				"type":   float64(c.Type),
				"length": float64(c.Length),
				"data":   c.Data,
			}
		}
		fields["chunks"] = chunks
	}
	write(rw, http.StatusOK, fields)
}

func errorFields(v apis.ErrorView) map[string]any {
	out := map[string]any{"code": v.Code}
	if v.Reason != "" {
		out["reason"] = v.Reason
	}
	if v.Message != "" {
		out["message"] = v.Message
	}
	if len(v.Details) > 0 {
		ds := make([]any, len(v.Details))
		for i, d := range v.Details {
			info := make(map[string]any, len(d.Info))
			for k, val := range d.Info {
				info[k] = val
			}
			ds[i] = map[string]any{"type": d.Type, "field": d.Field, "info": info}
		}
		out["details"] = ds
	}
	return out
}

func write(rw http.ResponseWriter, status int, fields map[string]any) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	b, err := marshal.Marshal(s)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_, _ = rw.Write(b)
}
