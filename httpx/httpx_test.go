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

package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/mapper"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
	"dirpx.dev/osreason/tlv"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestWriteError(t *testing.T) {
	w := Writer{Mapper: mapper.Default}
	rec := httptest.NewRecorder()
	err := oserr.E(code.OutOfMemory, "heap budget exhausted",
		oserr.WithReasonOption(reason.MustParse("heap.alloc")),
		oserr.WithDetailOption("size", 64),
	)
	w.WriteError(rec, err, Meta{Correlation: "req-1", RetryAfterSeconds: 2})

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "2", rec.Header().Get("Retry-After"))
	body := decode(t, rec)["error"].(map[string]any)
	require.Equal(t, "out_of_memory", body["code"])
	require.Equal(t, "heap.alloc", body["reason"])
	require.Equal(t, "heap budget exhausted", body["message"])
	require.Equal(t, "req-1", body["correlation"])
	details := body["details"].([]any)
	require.Len(t, details, 1)
	require.Equal(t, map[string]any{
		"type":  "extra",
		"field": "size",
		"info":  map[string]any{"value": "64"},
	}, details[0])
}

func TestWriteError_Foreign(t *testing.T) {
	rec := httptest.NewRecorder()
	Writer{Mapper: mapper.Default}.WriteError(rec, errors.New("disk on fire"), Meta{})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)["error"].(map[string]any)
	require.Equal(t, "internal", body["code"])
	require.Empty(t, rec.Header().Get("Retry-After"))
}

func TestWriteError_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	Writer{Mapper: mapper.Default}.WriteError(rec, nil, Meta{})
	require.Zero(t, rec.Body.Len())
}

func TestWriteRecord(t *testing.T) {
	rec := httptest.NewRecorder()
	Writer{}.WriteRecord(rec, apis.RecordView{
		Namespace: 18,
		Code:      1 << 63,
		Flags:     5,
		BeginTag:  tlv.BeginOSReason,
		Capacity:  64,
		Chunks:    []apis.ChunkView{{Type: 1, Length: 2, Data: "0102"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, float64(18), body["namespace"])
	require.Equal(t, "9223372036854775808", body["code"])
	require.Equal(t, "5", body["flags"])
	require.Equal(t, float64(tlv.BeginOSReason), body["begin_tag"])
	require.Equal(t, []any{map[string]any{"type": float64(1), "length": float64(2), "data": "0102"}}, body["chunks"])
}
