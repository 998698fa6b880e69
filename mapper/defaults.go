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
	"net/http"

	"google.golang.org/grpc/codes"

	"dirpx.dev/osreason/code"
)

// defaultHTTP maps every known code to the HTTP status a record service
// reports for it.
var defaultHTTP = map[code.Code]int{
	code.InvalidArgument: http.StatusBadRequest,
	code.OutOfRange:      http.StatusBadRequest,
	code.NoSpace:         http.StatusRequestEntityTooLarge, // chunk does not fit the payload
	code.Released:        http.StatusGone,                  // record was torn down by its last release
	code.OutOfMemory:     http.StatusServiceUnavailable,    // slot pool or heap exhausted; retry later
	code.Encoding:        http.StatusInternalServerError,
	code.Internal:        http.StatusInternalServerError,
}

// defaultGRPC is the gRPC counterpart of defaultHTTP.
var defaultGRPC = map[code.Code]codes.Code{
	code.InvalidArgument: codes.InvalidArgument,
	code.OutOfRange:      codes.OutOfRange,
	code.NoSpace:         codes.ResourceExhausted,
	code.Released:        codes.FailedPrecondition, // gRPC has no 410
	code.OutOfMemory:     codes.ResourceExhausted,
	code.Encoding:        codes.DataLoss,
	code.Internal:        codes.Internal,
}
