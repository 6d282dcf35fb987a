// Package http implements an HTTP based transport for hKV. It is the easiest
// transport to integrate with existing infrastructure (load balancers, curl)
// and also exposes the operational endpoints of the server.
//
// Endpoints:
//
//   - POST /execute: the body is a serialized request, the response body the
//     serialized response. The HTTP status is 200 whenever a response could be
//     produced; the command status is part of the response itself.
//
//   - GET /metrics: all metrics in the Prometheus text format.
//
//   - GET /healthz: returns "ok".
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. It spreads requests
//     over all endpoints round-robin and retries failed requests on the next one.
//
//   - httpServerTransport: Implements IRPCServerTransport on top of net/http.
//     With log level debug every request is logged with its duration.
//
// Thread Safety:
//
//	The client transport is safe for concurrent use once connected. It uses an
//	atomic counter for the round-robin selection.
package http
