package wlgo

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// object is the canonical registry entry for one protocol object. Every
// Resource handle to the object shares the same *object, which is why
// handles compare equal by entry identity and observe liveness changes
// together.
//
// The alive flag transitions exactly once, true to false. version and
// iface never change after creation. The mutex guards the filter slots
// and the client reference; the flag itself is atomic so concurrent
// senders never contend with the dispatch thread.
type object struct {
	id      uint32
	version uint32
	iface   *Interface

	// external marks an object owned by a foreign native library. Its
	// lifetime cannot be tracked, user data cannot be attached, and it
	// always reports dead.
	external bool
	// native is the wl_resource pointer for native-backend objects.
	native uintptr

	alive atomic.Bool

	mu         sync.Mutex
	client     *Client
	request    *Filter
	destructor *Filter

	userData *UserData
	backend  backend
}

// kill flips the liveness flag and fires the destructor filter. It
// reports whether this call performed the transition; repeated calls are
// no-ops, so the destructor runs at most once.
func (o *object) kill() bool {
	if !o.alive.CompareAndSwap(true, false) {
		return false
	}
	o.mu.Lock()
	d := o.destructor
	o.mu.Unlock()
	if d != nil {
		d.invoke(objectHandle{o}, nil)
	}
	return true
}

// dispatchRequest hands a decoded request to the registered filter.
// An object with no filter silently drops the request: the object may
// exist before anybody listens during setup races, and that is not a
// fault.
func (o *object) dispatchRequest(msg Message) {
	o.mu.Lock()
	f := o.request
	o.mu.Unlock()
	if f == nil {
		Logger().Debug("dropping request with no filter",
			zap.String("interface", o.iface.Name),
			zap.Uint32("id", o.id),
			zap.Uint16("opcode", msg.Opcode))
		return
	}
	f.invoke(objectHandle{o}, &msg)
}

func (o *object) assignRequest(f *Filter) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.request != nil {
		return ErrFilterAlreadySet
	}
	if err := f.bind(o); err != nil {
		return err
	}
	o.request = f
	return nil
}

func (o *object) assignDestructor(f *Filter) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destructor != nil {
		return ErrFilterAlreadySet
	}
	if err := f.bind(o); err != nil {
		return err
	}
	o.destructor = f
	return nil
}

func (o *object) clientRef() *Client {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.client
}

// Object is the interface-erased view of a resource handle. Every
// Resource[I] implements it; filters receive their target through this
// interface and can recover the typed handle with As.
type Object interface {
	// ID returns the object id within its client connection.
	ID() uint32
	// Version returns the negotiated version, 0 for dead or
	// externally-unmanaged objects.
	Version() uint32
	// IsAlive reports whether the protocol object still exists.
	IsAlive() bool
	// Interface returns the object's interface descriptor.
	Interface() *Interface
	// UserData returns the shared payload slot. It works on dead
	// objects; the slot outlives the liveness flag.
	UserData() *UserData
	// PostError posts a fatal protocol error to the owning client.
	PostError(code uint32, msg string)

	state() *object
}

// objectHandle is the untyped handle passed to filters.
type objectHandle struct {
	obj *object
}

func (h objectHandle) ID() uint32 { return h.obj.id }

func (h objectHandle) Version() uint32 {
	return publicVersion(h.obj)
}

func (h objectHandle) IsAlive() bool { return h.obj.alive.Load() }

func (h objectHandle) Interface() *Interface { return h.obj.iface }

func (h objectHandle) UserData() *UserData { return h.obj.userData }

func (h objectHandle) PostError(code uint32, msg string) {
	h.obj.backend.postError(h.obj, code, msg)
}

func (h objectHandle) state() *object { return h.obj }

func publicVersion(o *object) uint32 {
	if o.external || !o.alive.Load() {
		return 0
	}
	return o.backend.liveVersion(o)
}

// As recovers a typed handle from the untyped view. It fails when the
// object's interface does not match I's descriptor.
func As[I InterfaceTag](o Object) (Resource[I], bool) {
	var tag I
	st := o.state()
	if st == nil || st.iface.Name != tag.Descriptor().Name {
		return Resource[I]{}, false
	}
	return Resource[I]{obj: st}, true
}
