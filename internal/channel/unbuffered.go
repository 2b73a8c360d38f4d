package channel

// Unbuffered wraps an unbuffered Go channel, so every Send rendezvous
// with a receiver. Debug builds use it to surface backpressure
// immediately.
type Unbuffered[T any] struct {
	ch chan T
}

func NewUnbuffered[T any]() *Unbuffered[T] {
	return &Unbuffered[T]{ch: make(chan T)}
}

// Send blocks until a receiver takes the value.
func (c *Unbuffered[T]) Send(v T) { c.ch <- v }

// TrySend delivers only when a receiver is already waiting.
func (c *Unbuffered[T]) TrySend(v T) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

func (c *Unbuffered[T]) Receive() <-chan T { return c.ch }

// Len is always zero: nothing is ever held in the channel.
func (c *Unbuffered[T]) Len() int { return 0 }

func (c *Unbuffered[T]) Close() { close(c.ch) }
