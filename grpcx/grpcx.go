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

// Package grpcx maps *oserr.Error values returned by gRPC handlers to gRPC
// statuses carrying a google.rpc.ErrorInfo detail.
package grpcx

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	gstatus "google.golang.org/grpc/status"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
)

// Domain is the ErrorInfo domain of every status produced here.
const Domain = "osreason"

// Metadata keys set on ErrorInfo besides the error details.
const (
	MetaReason     = "reason"
	MetaHTTPStatus = "http_status"
)

// MetaFn adds request-scoped metadata, such as a trace id, to the
// ErrorInfo of e. It may return nil.
type MetaFn func(ctx context.Context, e *oserr.Error) map[string]string

// UnaryServerInterceptor converts *oserr.Error results into statuses using
// m. Other errors pass through unchanged. metaFn may be nil.
func UnaryServerInterceptor(m apis.Mapper, metaFn MetaFn) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, ToStatusError(ctx, err, m, metaFn)
		}
		return resp, nil
	}
}

// StreamServerInterceptor is the streaming counterpart of
// UnaryServerInterceptor.
func StreamServerInterceptor(m apis.Mapper, metaFn MetaFn) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := handler(srv, ss); err != nil {
			return ToStatusError(ss.Context(), err, m, metaFn)
		}
		return nil
	}
}

// ToStatusError converts err when its chain holds an *oserr.Error and
// returns it unchanged otherwise.
func ToStatusError(ctx context.Context, err error, m apis.Mapper, metaFn MetaFn) error {
	if _, ok := gstatus.FromError(err); ok {
		return err
	}
	e, ok := oserr.As(err)
	if !ok {
		return err
	}
	st := m.Status(e.Code, e.Reason)

	info := &errdetails.ErrorInfo{
		Reason:   strings.ToUpper(string(e.Code)),
		Domain:   Domain,
		Metadata: map[string]string{MetaHTTPStatus: strconv.Itoa(st.HTTP)},
	}
	if e.Reason != reason.Empty {
		info.Metadata[MetaReason] = string(e.Reason)
	}
	for _, d := range e.ErrorDetails() {
		info.Metadata[d.Field] = d.Info["value"]
	}
	if metaFn != nil {
		for k, v := range metaFn(ctx, e) {
			info.Metadata[k] = v
		}
	}

	base := gstatus.New(st.GRPC, e.Message)
	if with, werr := base.WithDetails(info); werr == nil {
		return with.Err()
	}
	return base.Err()
}

// ExtractErrorInfo returns the ErrorInfo detail this package attached to
// err, if any.
func ExtractErrorInfo(err error) (*errdetails.ErrorInfo, bool) {
	st, ok := gstatus.FromError(err)
	if !ok || st == nil {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == Domain {
			return info, true
		}
	}
	return nil, false
}

// FromError rebuilds an *oserr.Error on the client side of a call. Error
// details other than the reason are not restored.
func FromError(err error) (*oserr.Error, bool) {
	info, ok := ExtractErrorInfo(err)
	if !ok {
		return nil, false
	}
	c, perr := code.Parse(info.GetReason())
	if perr != nil {
		return nil, false
	}
	st, _ := gstatus.FromError(err)
	e := oserr.E(c, st.Message())
	if r, rerr := reason.Parse(info.GetMetadata()[MetaReason]); rerr == nil && r != reason.Empty {
		e = e.WithReason(r)
	}
	return e, true
}
