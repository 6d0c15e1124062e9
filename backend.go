package wlgo

// backend is the lifecycle authority for all objects of one client
// connection. Two implementations exist: the self-contained registry,
// which keeps every object in Go, and the native backend, which projects
// over libwayland-server's object table. Everything above this interface
// (Resource, Filter, Client) is written against it, never against
// backend internals, so the backend choice is a composition-time
// decision made when the Client is built.
type backend interface {
	// create registers a new object. id 0 lets the backend pick one;
	// the self-contained registry allocates sequentially from the
	// server id range, the native backend defers to libwayland-server.
	create(iface *Interface, version, id uint32, c *Client) (*object, error)

	// lookup finds a live object by id. A miss is absence, not a
	// fault; the driver maps it to a protocol error.
	lookup(id uint32) (*object, bool)

	// markDead flips the object's liveness and fires its destructor
	// filter exactly once. Idempotent.
	markDead(o *object)

	// sendEvent serializes and transmits an event. Dead objects drop
	// the event silently; destroy races are expected, not errors.
	sendEvent(o *object, msg Message)

	// dispatch invokes the object's request filter, dropping the
	// message when none is registered.
	dispatch(o *object, msg Message)

	// liveVersion reads the object's version from the canonical owner.
	liveVersion(o *object) uint32

	// postError posts a fatal protocol error on behalf of the object.
	postError(o *object, code uint32, msg string)

	// all returns the live objects in creation order, for the
	// disconnect cascade.
	all() []*object
}
