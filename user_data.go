package wlgo

import "sync"

// UserData is the type-erased payload slot attached to one protocol
// object. All handles to the object observe the same slot, and the slot
// stays readable after the object dies so destructor filters and
// stragglers can still reach accumulated state.
//
// The slot is set at most once. Typed access goes through UserDataAs,
// which distinguishes an empty slot from a type mismatch.
type UserData struct {
	mu     sync.Mutex
	set    bool
	value  any
	sealed bool // externally-owned object, attachment forbidden
}

// Set stores v in the slot. It returns false if a value was already
// stored; the first value wins.
//
// Set panics on objects owned by a foreign native library: their user
// data cannot be tracked, so attaching any is a bug at the call site.
func (u *UserData) Set(v any) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.sealed {
		panic("wlgo: cannot attach user data to an externally-owned object")
	}
	if u.set {
		return false
	}
	u.set = true
	u.value = v
	return true
}

// Get returns the stored value, or nil if the slot is empty.
func (u *UserData) Get() any {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.value
}

// UserDataAs returns the slot's value as T. It fails with ErrUserDataUnset
// when nothing was stored and with ErrUserDataType when the stored value
// is not a T.
func UserDataAs[T any](u *UserData) (T, error) {
	u.mu.Lock()
	set, v := u.set, u.value
	u.mu.Unlock()

	var zero T
	if !set {
		return zero, ErrUserDataUnset
	}
	t, ok := v.(T)
	if !ok {
		return zero, ErrUserDataType
	}
	return t, nil
}
