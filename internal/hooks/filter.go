// Where: internal/hooks/filter.go
// What: Ordered contribution list for a single extension point.
// Why: Preserve insertion order so rendering and execution stay deterministic.
package hooks

// Filter collects contributions for one extension point in insertion order.
// It is populated during plugin registration and read by later phases.
type Filter[T any] struct {
	name  string
	items []T
}

// NewFilter creates an empty filter with the given extension point name.
func NewFilter[T any](name string) *Filter[T] {
	return &Filter[T]{name: name}
}

// Name returns the extension point name.
func (f *Filter[T]) Name() string {
	return f.name
}

// AddItem appends a single contribution.
func (f *Filter[T]) AddItem(item T) {
	f.items = append(f.items, item)
}

// AddItems appends contributions in order. An empty call is a no-op.
func (f *Filter[T]) AddItems(items ...T) {
	f.items = append(f.items, items...)
}

// Items returns a copy of the contributions.
func (f *Filter[T]) Items() []T {
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out
}

// Len reports the number of contributions.
func (f *Filter[T]) Len() int {
	return len(f.items)
}
