package wlgo

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Client identifies one connection and owns the registry of objects
// created within it. A Client is driven by exactly one dispatch flow at
// a time: the external driver decodes messages off the wire and pumps
// them through Dispatch one by one. Handles to the client's objects may
// be used concurrently from other goroutines for liveness checks and
// sends.
type Client struct {
	backend backend

	faulted atomic.Bool

	mu      sync.Mutex
	errObj  uint32
	errCode uint32
	errMsg  string
}

// NewClient builds a client over the self-contained backend. Events
// sent by the client's objects are handed to t for serialization and
// transmission.
func NewClient(t Transport) *Client {
	c := &Client{}
	c.backend = newRegistry(t)
	return c
}

// New creates a protocol object of interface I inside the client with
// the given negotiated version, letting the backend choose the id.
// Fails if version exceeds the interface's supported maximum.
func New[I InterfaceTag](c *Client, version uint32) (Resource[I], error) {
	return NewWithID[I](c, version, 0)
}

// NewWithID creates a protocol object under an explicit id, as when a
// request carries the client-chosen id of the object it instantiates.
// id 0 delegates allocation to the backend.
func NewWithID[I InterfaceTag](c *Client, version, id uint32) (Resource[I], error) {
	var tag I
	o, err := c.backend.create(tag.Descriptor(), version, id, c)
	if err != nil {
		return Resource[I]{}, err
	}
	return Resource[I]{obj: o}, nil
}

// Lookup finds a live object by id and returns a typed handle. ok is
// false when no such object exists or its interface is not I.
func Lookup[I InterfaceTag](c *Client, id uint32) (Resource[I], bool) {
	var tag I
	o, ok := c.backend.lookup(id)
	if !ok || o.iface.Name != tag.Descriptor().Name {
		return Resource[I]{}, false
	}
	return Resource[I]{obj: o}, true
}

// Dispatch routes one decoded request to the target object's filter.
// The returned error is ErrNoSuchObject when the id is not registered —
// a protocol error by the client which the driver reports, not a
// library fault. Requests on objects without a filter are dropped
// silently.
func (c *Client) Dispatch(objectID uint32, opcode uint16, args []any) error {
	o, ok := c.backend.lookup(objectID)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNoSuchObject, objectID)
	}
	c.backend.dispatch(o, Message{Opcode: opcode, Args: args})
	return nil
}

// Faulted reports whether a protocol error was posted on this client.
// The driver checks it after every dispatch cycle and calls Kill to
// tear the connection down.
func (c *Client) Faulted() bool {
	return c.faulted.Load()
}

// ProtocolError returns the first posted protocol error, if any.
func (c *Client) ProtocolError() (objectID, code uint32, msg string, ok bool) {
	if !c.faulted.Load() {
		return 0, 0, "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errObj, c.errCode, c.errMsg, true
}

// Kill marks every object owned by the client dead, firing each
// registered destructor filter once. Destruction order across distinct
// objects follows creation order; only per-object monotonicity is a
// contract. Idempotent.
func (c *Client) Kill() {
	for _, o := range c.backend.all() {
		c.backend.markDead(o)
	}
	if rel, ok := c.backend.(interface{ release() }); ok {
		rel.release()
	}
}

// fault records the first protocol error and flips the fault flag.
func (c *Client) fault(objectID, code uint32, msg string) {
	if !c.faulted.CompareAndSwap(false, true) {
		return
	}
	c.mu.Lock()
	c.errObj, c.errCode, c.errMsg = objectID, code, msg
	c.mu.Unlock()
	Logger().Warn("protocol error posted",
		zap.Uint32("object", objectID),
		zap.Uint32("code", code),
		zap.String("message", msg))
}
