// Package channel provides the generic channel wrappers used to hand
// computed scenes (and other results) between goroutines without the
// producer and consumer knowing each other's buffering policy.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	// Send blocks until the value is accepted.
	Send(T)
	// TrySend delivers without blocking; false means the channel was
	// full (or had no waiting receiver).
	TrySend(T) bool
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
