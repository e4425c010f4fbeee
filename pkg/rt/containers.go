package rt

import (
	"iter"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/trees/binaryheap"
)

// Deque is a double-ended queue.
type Deque[E any] struct {
	list *doublylinkedlist.List
}

func NewDeque[E any]() *Deque[E] {
	return &Deque[E]{list: doublylinkedlist.New()}
}

func (d *Deque[E]) PushBack(v E) { d.list.Append(v) }
func (d *Deque[E]) PushFront(v E) { d.list.Prepend(v) }

// PopFront removes and returns the first element.
func (d *Deque[E]) PopFront() (E, bool) {
	return d.take(0)
}

// PopBack removes and returns the last element.
func (d *Deque[E]) PopBack() (E, bool) {
	return d.take(d.list.Size() - 1)
}

func (d *Deque[E]) take(i int) (E, bool) {
	var zero E
	v, ok := d.list.Get(i)
	if !ok {
		return zero, false
	}
	d.list.Remove(i)
	e, _ := v.(E)
	return e, true
}

func (d *Deque[E]) Len() int { return d.list.Size() }
func (d *Deque[E]) Values() []E { return typed[E](d.list.Values()) }
func (d *Deque[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		it := d.list.Iterator()
		for it.Next() {
			e, _ := it.Value().(E)
			if !yield(e) {
				return
			}
		}
	}
}

// LinkedList is a singly linked list that grows at the back.
type LinkedList[E any] struct {
	list *singlylinkedlist.List
}

func NewLinkedList[E any]() *LinkedList[E] {
	return &LinkedList[E]{list: singlylinkedlist.New()}
}

func (l *LinkedList[E]) Append(v E) { l.list.Append(v) }
func (l *LinkedList[E]) Prepend(v E) { l.list.Prepend(v) }
func (l *LinkedList[E]) Len() int { return l.list.Size() }
func (l *LinkedList[E]) Values() []E { return typed[E](l.list.Values()) }

func (l *LinkedList[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		it := l.list.Iterator()
		for it.Next() {
			e, _ := it.Value().(E)
			if !yield(e) {
				return
			}
		}
	}
}

// OrderedSet keeps distinct elements in ascending order.
type OrderedSet[E any] struct {
	set *treeset.Set
}

func NewOrderedSet[E any]() *OrderedSet[E] {
	return &OrderedSet[E]{set: treeset.NewWith(Compare)}
}

func (s *OrderedSet[E]) Add(v E) { s.set.Add(v) }
func (s *OrderedSet[E]) Contains(v E) bool { return s.set.Contains(v) }
func (s *OrderedSet[E]) Remove(v E) { s.set.Remove(v) }
func (s *OrderedSet[E]) Len() int { return s.set.Size() }
func (s *OrderedSet[E]) Values() []E { return typed[E](s.set.Values()) }
func (s *OrderedSet[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		it := s.set.Iterator()
		for it.Next() {
			e, _ := it.Value().(E)
			if !yield(e) {
				return
			}
		}
	}
}

// OrderedMap keeps entries in ascending key order. Put on an existing key
// replaces its value.
type OrderedMap[K, V any] struct {
	m *treemap.Map
}

func NewOrderedMap[K, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{m: treemap.NewWith(Compare)}
}

func (m *OrderedMap[K, V]) Put(k K, v V) { m.m.Put(k, v) }

func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	var zero V
	v, ok := m.m.Get(k)
	if !ok {
		return zero, false
	}
	e, _ := v.(V)
	return e, true
}

func (m *OrderedMap[K, V]) Len() int { return m.m.Size() }
func (m *OrderedMap[K, V]) Keys() []K { return typed[K](m.m.Keys()) }
func (m *OrderedMap[K, V]) Values() []V { return typed[V](m.m.Values()) }

func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := m.m.Iterator()
		for it.Next() {
			k, _ := it.Key().(K)
			v, _ := it.Value().(V)
			if !yield(k, v) {
				return
			}
		}
	}
}

// PriorityQueue pops its largest element first.
type PriorityQueue[E any] struct {
	heap *binaryheap.Heap
}

func NewPriorityQueue[E any]() *PriorityQueue[E] {
	return &PriorityQueue[E]{heap: binaryheap.NewWith(reversed(Compare))}
}

func (q *PriorityQueue[E]) Push(v E) { q.heap.Push(v) }

func (q *PriorityQueue[E]) Pop() (E, bool) {
	var zero E
	v, ok := q.heap.Pop()
	if !ok {
		return zero, false
	}
	e, _ := v.(E)
	return e, true
}

func (q *PriorityQueue[E]) Peek() (E, bool) {
	var zero E
	v, ok := q.heap.Peek()
	if !ok {
		return zero, false
	}
	e, _ := v.(E)
	return e, true
}

func (q *PriorityQueue[E]) Len() int { return q.heap.Size() }

// Values returns the elements in heap order, not sorted.
func (q *PriorityQueue[E]) Values() []E { return typed[E](q.heap.Values()) }
