package pool

// Pool is a sparse array of items addressed by small integer handles.
// Freed slots are reused by later Adds. The pool only ever grows.
//
// Single-threaded usage: the pool belongs to whoever owns the GPU context.
type Pool[T any] struct {
	items   []T
	live    []bool
	count   int
	destroy func(*T)
}

// New returns a pool with initialCapacity free slots. destroy may be nil; when
// set it runs on an item right before its slot is released.
func New[T any](initialCapacity int, destroy func(*T)) *Pool[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &Pool[T]{
		items:   make([]T, initialCapacity),
		live:    make([]bool, initialCapacity),
		destroy: destroy,
	}
}

// Add stores item in the first free slot and returns its handle.
// When every slot is taken the capacity doubles and the first new slot is used.
func (p *Pool[T]) Add(item T) int {
	id := -1
	for i, used := range p.live {
		if !used {
			id = i
			break
		}
	}
	if id < 0 {
		id = len(p.items)
		p.grow(2 * len(p.items))
	}
	p.items[id] = item
	p.live[id] = true
	p.count++
	return id
}

// Remove destroys the item at id and frees the slot.
// Unknown or already removed ids are ignored.
func (p *Pool[T]) Remove(id int) {
	if !p.Check(id) {
		return
	}
	if p.destroy != nil {
		p.destroy(&p.items[id])
	}
	var zero T
	p.items[id] = zero
	p.live[id] = false
	p.count--
}

// Check reports whether id refers to a live item.
func (p *Pool[T]) Check(id int) bool {
	return id >= 0 && id < len(p.live) && p.live[id]
}

// Get returns a pointer to the live item at id, or nil.
// The pointer is invalidated by the next Add that grows the pool.
func (p *Pool[T]) Get(id int) *T {
	if !p.Check(id) {
		return nil
	}
	return &p.items[id]
}

// Len returns the number of live items.
func (p *Pool[T]) Len() int { return p.count }

// Cap returns the number of slots.
func (p *Pool[T]) Cap() int { return len(p.items) }

// Each calls fn for every live item in handle order.
func (p *Pool[T]) Each(fn func(id int, item *T)) {
	for i, used := range p.live {
		if used {
			fn(i, &p.items[i])
		}
	}
}

// Terminate destroys every live item and drops the backing storage.
// The pool stays usable afterwards, starting again from a single slot.
func (p *Pool[T]) Terminate() {
	p.Each(func(_ int, item *T) {
		if p.destroy != nil {
			p.destroy(item)
		}
	})
	p.items = make([]T, 1)
	p.live = make([]bool, 1)
	p.count = 0
}

func (p *Pool[T]) grow(capacity int) {
	if capacity <= len(p.items) {
		return
	}
	items := make([]T, capacity)
	copy(items, p.items)
	live := make([]bool, capacity)
	copy(live, p.live)
	p.items, p.live = items, live
}
