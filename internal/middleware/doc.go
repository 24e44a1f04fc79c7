// Package middleware provides built-in dispatch middleware.
//
//   - Logging writes one structured record per dispatched event.
//   - Tracing opens an OpenTelemetry span around delivery.
//   - ForTypes restricts another middleware to matching event types.
//   - Script runs before/after hooks written in Lua; a before hook that
//     returns false cancels delivery.
package middleware
