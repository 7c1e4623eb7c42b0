// Package chat implements the core of the Nexus chat system: the presence
// registry, the administrative block list, the bounded message history, and
// the hub that routes inbound client events to the right set of connections.
//
// The hub owns all shared state and mutates it from a single event loop, so
// no two inbound events ever interleave their reads and writes. Transports
// talk to the hub through the Conn interface and the Connect, Disconnect,
// and Handle entry points.
package chat
