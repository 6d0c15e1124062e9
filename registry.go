package wlgo

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// serverIDBase is the first id in the server-allocated object id range.
// Ids below it belong to the client and arrive in requests.
const serverIDBase uint32 = 0xff000000

// registry is the self-contained backend: all object state lives in its
// own storage, nothing is delegated.
type registry struct {
	transport Transport

	mu      sync.Mutex
	objects map[uint32]*object
	nextID  uint32
}

func newRegistry(t Transport) *registry {
	return &registry{
		transport: t,
		objects:   make(map[uint32]*object),
		nextID:    serverIDBase,
	}
}

func (r *registry) create(iface *Interface, version, id uint32, c *Client) (*object, error) {
	if version > iface.Version {
		return nil, fmt.Errorf("%w: %s version %d, interface supports %d",
			ErrVersionTooNew, iface.Name, version, iface.Version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id == 0 {
		// Explicit creations may have claimed ids in the server range.
		for _, taken := r.objects[r.nextID]; taken; _, taken = r.objects[r.nextID] {
			r.nextID++
		}
		id = r.nextID
		r.nextID++
	} else if _, taken := r.objects[id]; taken {
		return nil, fmt.Errorf("%w: %s@%d", ErrIDInUse, iface.Name, id)
	}

	o := &object{
		id:       id,
		version:  version,
		iface:    iface,
		client:   c,
		userData: &UserData{},
		backend:  r,
	}
	o.alive.Store(true)
	r.objects[id] = o
	return o, nil
}

func (r *registry) lookup(id uint32) (*object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[id]
	return o, ok
}

func (r *registry) markDead(o *object) {
	// The destructor filter fires inside kill, before the id is
	// unregistered, so it still sees the entry through its handle.
	if !o.kill() {
		return
	}
	r.mu.Lock()
	delete(r.objects, o.id)
	r.mu.Unlock()
}

func (r *registry) sendEvent(o *object, msg Message) {
	if !o.alive.Load() {
		Logger().Debug("dropping event for dead object",
			zap.String("interface", o.iface.Name),
			zap.Uint32("id", o.id),
			zap.Uint16("opcode", msg.Opcode))
		return
	}
	if err := r.transport.WriteEvent(o.id, msg.Opcode, msg.Args); err != nil {
		Logger().Warn("event transmission failed",
			zap.String("interface", o.iface.Name),
			zap.Uint32("id", o.id),
			zap.Uint16("opcode", msg.Opcode),
			zap.Error(err))
	}
}

func (r *registry) dispatch(o *object, msg Message) {
	o.dispatchRequest(msg)
}

func (r *registry) liveVersion(o *object) uint32 {
	return o.version
}

func (r *registry) postError(o *object, code uint32, msg string) {
	if !o.alive.Load() {
		return
	}
	if c := o.clientRef(); c != nil {
		c.fault(o.id, code, msg)
	}
}

func (r *registry) all() []*object {
	r.mu.Lock()
	objs := make([]*object, 0, len(r.objects))
	for _, o := range r.objects {
		objs = append(objs, o)
	}
	r.mu.Unlock()

	// Creation order; ids are allocated sequentially.
	sort.Slice(objs, func(i, j int) bool { return objs[i].id < objs[j].id })
	return objs
}
