package wlgo

import (
	"fmt"

	"go.uber.org/zap"
)

// Resource is a handle to a protocol object instantiated in a client
// connection. Several handles to the same object can exist at a time;
// copying a handle does not create a new protocol object, only another
// handle. The lifetime of the protocol object is not tied to the
// lifetime of its handles: it ends when a destroying message is
// processed or the client disconnects, and every handle observes that
// transition at once.
//
// The zero Resource is invalid; handles come from New, NewWithID,
// Lookup, As, or the native interop constructors.
type Resource[I InterfaceTag] struct {
	obj *object
}

// Send emits an event through this object to the associated client.
//
// Sending on a dead object is a silent no-op: destroy races between the
// client and server are part of the protocol and must not surface as
// faults. Sending an event whose minimum version exceeds the object's
// negotiated version panics; that is a code-generation or logic bug at
// the call site, not a runtime condition.
func (r Resource[I]) Send(ev Message) {
	o := r.obj
	if o.external {
		// Foreign objects are untracked; the external owner decides
		// what is valid.
		o.backend.sendEvent(o, ev)
		return
	}
	if !o.alive.Load() {
		Logger().Debug("send on dead resource",
			zap.String("interface", o.iface.Name),
			zap.Uint32("id", o.id),
			zap.Uint16("opcode", ev.Opcode))
		return
	}
	if int(ev.Opcode) >= len(o.iface.Events) {
		panic(fmt.Sprintf("wlgo: interface %s has no event with opcode %d",
			o.iface.Name, ev.Opcode))
	}
	desc := o.iface.Events[ev.Opcode]
	v := o.backend.liveVersion(o)
	if v == 0 {
		// The object was destroyed between the liveness check and the
		// version read. Same destroy race as above, same silent drop.
		Logger().Debug("send on dying resource",
			zap.String("interface", o.iface.Name),
			zap.Uint32("id", o.id),
			zap.Uint16("opcode", ev.Opcode))
		return
	}
	if desc.Since > v {
		panic(fmt.Sprintf(
			"wlgo: cannot send event %q which requires version >= %d on resource %s@%d which is version %d",
			desc.Name, desc.Since, o.iface.Name, o.id, v))
	}
	o.backend.sendEvent(o, ev)
}

// IsAlive reports whether the protocol object still exists. It returns
// false once the object has been destroyed, and always false for
// objects not managed by this library (see FromCPtr).
func (r Resource[I]) IsAlive() bool {
	return r.obj.alive.Load()
}

// Version returns the negotiated interface version of this object.
// Returns 0 on dead and externally-unmanaged objects.
func (r Resource[I]) Version() uint32 {
	return publicVersion(r.obj)
}

// ID returns the object id within its client connection.
func (r Resource[I]) ID() uint32 {
	return r.obj.id
}

// Interface returns the object's interface descriptor.
func (r Resource[I]) Interface() *Interface {
	return r.obj.iface
}

// Equals reports whether the other handle refers to the same underlying
// protocol object. A handle from a destroyed-then-recreated id names a
// new entry and is not equal to handles of the old one.
func (r Resource[I]) Equals(other Resource[I]) bool {
	return r.obj != nil && r.obj == other.obj
}

// SameClientAs reports whether this object and the other belong to the
// same client. Always returns false if either of them is dead; liveness
// is required for the comparison to be meaningful.
func (r Resource[I]) SameClientAs(other Object) bool {
	a, b := r.obj, other.state()
	if a == nil || b == nil {
		return false
	}
	if !a.alive.Load() || !b.alive.Load() {
		return false
	}
	ca, cb := a.clientRef(), b.clientRef()
	return ca != nil && ca == cb
}

// PostError posts a fatal protocol error to the client owning this
// object. The error is fatal to that client's connection, not to the
// object set: the driver observes the fault flag after the dispatch
// cycle and tears the connection down.
func (r Resource[I]) PostError(code uint32, msg string) {
	r.obj.backend.postError(r.obj, code, msg)
}

// UserData returns the payload slot associated with this object. The
// slot is shared by all handles and stays readable after the object
// dies.
func (r Resource[I]) UserData() *UserData {
	return r.obj.userData
}

// Client returns the client this object belongs to. ok is false once
// the object is no longer alive.
func (r Resource[I]) Client() (*Client, bool) {
	o := r.obj
	if !o.alive.Load() {
		return nil, false
	}
	c := o.clientRef()
	return c, c != nil
}

// Destroy marks the object dead, firing its destructor filter. The
// driver calls this when it processes the protocol's destroy request.
// Idempotent.
func (r Resource[I]) Destroy() {
	r.obj.backend.markDead(r.obj)
}

// Assign registers the filter that receives this object's decoded
// requests. A filter is registered at most once per object; a second
// call fails with ErrFilterAlreadySet and leaves the first registration
// untouched.
func (r Resource[I]) Assign(f *Filter) error {
	return r.obj.assignRequest(f)
}

// AssignFunc is the convenience form of Assign for a plain handler
// function. The destructor signal is not delivered here; use
// AssignDestructor for cleanup.
func (r Resource[I]) AssignFunc(fn func(Resource[I], Message)) error {
	return r.Assign(NewFilter(func(o Object, msg *Message) {
		if msg == nil {
			return
		}
		fn(Resource[I]{obj: o.state()}, *msg)
	}))
}

// AssignDestructor registers the filter invoked exactly once when the
// object dies, with a handle to the already-dead entry and a nil
// message. Same single-registration rule as Assign.
func (r Resource[I]) AssignDestructor(f *Filter) error {
	return r.obj.assignDestructor(f)
}

func (r Resource[I]) state() *object { return r.obj }
