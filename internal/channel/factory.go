//go:build !debug

package channel

// New returns the production channel flavor: buffered, so result
// delivery never blocks a compute pass.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
