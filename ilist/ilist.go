// Package ilist provides ordered-insert and FIFO helpers over the standard
// library's doubly linked list.
//
// The scheduler's ready queues and semaphore wait lists both need an O(n)
// insert-ordered primitive with a caller-supplied comparator; no third-party
// package in the surrounding corpus offers one, and container/list already
// is the idiomatic Go doubly linked list, so these helpers are built directly
// on it rather than reinventing node linkage.
package ilist

import "container/list"

// Less reports whether a should be ordered before b.
type Less func(a, b any) bool

// InsertOrdered inserts v into l, keeping the list ordered according to
// less. Ties are broken by insertion order (the new element is placed after
// any existing elements it is not strictly less than), giving FIFO behavior
// among equal-ranked elements. O(n).
func InsertOrdered(l *list.List, v any, less Less) *list.Element {
	for e := l.Front(); e != nil; e = e.Next() {
		if less(v, e.Value) {
			return l.InsertBefore(v, e)
		}
	}
	return l.PushBack(v)
}

// PopFront removes and returns the value at the front of l, or nil if l is
// empty.
func PopFront(l *list.List) any {
	e := l.Front()
	if e == nil {
		return nil
	}
	l.Remove(e)
	return e.Value
}

// Max returns the element in l that ranks highest according to less (i.e.
// the element that is never "less" than any other), or nil if l is empty.
// Ties resolve to the earliest element in the list (FIFO among equals).
func Max(l *list.List, less Less) *list.Element {
	best := l.Front()
	if best == nil {
		return nil
	}
	for e := best.Next(); e != nil; e = e.Next() {
		if less(best.Value, e.Value) {
			best = e
		}
	}
	return best
}
