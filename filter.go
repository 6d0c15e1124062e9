package wlgo

import "sync"

// Filter is a reusable unit of request-handling logic bound to one
// object. The same filter value receives every decoded request for its
// object and, when registered as a destructor, the destruction signal:
// an invocation with a nil message.
//
// A filter is bound at most once. Binding happens on the first Assign or
// AssignDestructor call and is permanent for the object's lifetime;
// assigning a bound filter to a different object fails with
// ErrFilterBound. The request and destructor slots of the same object
// may share one filter.
type Filter struct {
	fn func(Object, *Message)

	mu    sync.Mutex
	bound *object
}

// NewFilter wraps fn into a filter. fn is invoked with the target handle
// and the decoded request, or with a nil message for the destructor
// signal.
func NewFilter(fn func(Object, *Message)) *Filter {
	return &Filter{fn: fn}
}

// When returns a new, unbound filter that delegates to f only when pred
// accepts the invocation. The destructor signal (nil message) is always
// passed through.
func (f *Filter) When(pred func(Object, *Message) bool) *Filter {
	return NewFilter(func(o Object, msg *Message) {
		if msg == nil || pred(o, msg) {
			f.fn(o, msg)
		}
	})
}

// Chain returns a new, unbound filter that delegates to each given
// filter in order.
func Chain(filters ...*Filter) *Filter {
	return NewFilter(func(o Object, msg *Message) {
		for _, f := range filters {
			f.fn(o, msg)
		}
	})
}

func (f *Filter) bind(o *object) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bound != nil && f.bound != o {
		return ErrFilterBound
	}
	f.bound = o
	return nil
}

func (f *Filter) invoke(o Object, msg *Message) {
	f.fn(o, msg)
}
