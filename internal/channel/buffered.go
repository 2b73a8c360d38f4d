package channel

// Buffered wraps a buffered Go channel. Sends only block once the
// buffer fills, so a slow consumer does not stall the scheduler.
type Buffered[T any] struct {
	ch chan T
}

func NewBuffered[T any](size int) *Buffered[T] {
	return &Buffered[T]{ch: make(chan T, size)}
}

// Send blocks while the buffer is full.
func (c *Buffered[T]) Send(v T) { c.ch <- v }

// TrySend reports false instead of blocking when the buffer is full.
func (c *Buffered[T]) TrySend(v T) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

func (c *Buffered[T]) Receive() <-chan T { return c.ch }

// Len reports how many values are waiting in the buffer.
func (c *Buffered[T]) Len() int { return len(c.ch) }

func (c *Buffered[T]) Close() { close(c.ch) }
