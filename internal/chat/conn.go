// Package chat defines the transport-facing connection contract used by the
// hub to deliver outbound events.
package chat

// Conn is the transport-side handle for one active client connection. The
// hub never interprets its structure; it uses it only as a map key and as a
// delivery target.
type Conn interface {
	// Deliver hands an outbound payload to the connection without blocking.
	// It reports false when the payload could not be queued, for example
	// because the connection's send buffer is full or already closed.
	Deliver(payload []byte) bool

	// Close tears the connection down. The hub calls it after kicks and
	// blocks and during shutdown; the transport signals the final
	// disconnect once the underlying connection is gone.
	Close() error

	// RemoteAddr identifies the connection in log output.
	RemoteAddr() string
}
