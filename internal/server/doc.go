// Package server implements the HTTP and WebSocket transport for the Nexus
// chat system.
//
// The implementation is organized into specialized files for configuration,
// clients, routing, and HTTP handlers to keep the codebase maintainable and
// testable as the project grows. The chat semantics themselves live in the
// chat package; this package only moves frames between sockets and the hub.
package server
