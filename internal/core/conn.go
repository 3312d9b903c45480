package core

// Frame is a raw serialized payload handed to a transport.
type Frame []byte

// ConnectionID is opaque and unique per process, one per live socket.
type ConnectionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
