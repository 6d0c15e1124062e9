//go:build (linux || freebsd) && (amd64 || arm64)

package wlgo

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/wlgo/internal/native"
)

// Init loads libwayland-server and registers the native bindings. It is
// called automatically by BindNativeClient, but can be called explicitly
// to check for errors up front. Safe to call multiple times.
func Init() error {
	return native.Load()
}

// nativeBackend is the delegating backend: a thin projection over the
// object table owned by libwayland-server. Liveness and version are read
// through to the C side, events are serialized and transmitted by it,
// and its destroy notifications cascade into markDead.
type nativeBackend struct {
	client    *Client
	clientPtr uintptr

	mu    sync.Mutex
	byID  map[uint32]*object
	byPtr map[uintptr]*object
}

var (
	nativeMu      sync.Mutex
	nativeClients = make(map[uintptr]*nativeBackend)
	orphans       *nativeBackend
)

// BindNativeClient builds a Client over the native backend for an
// existing wl_client pointer. Objects created through the returned
// client are owned by libwayland-server; wlgo tracks them and mirrors
// their destruction.
func BindNativeClient(clientPtr uintptr) (*Client, error) {
	if err := native.Load(); err != nil {
		return nil, err
	}
	if clientPtr == 0 {
		return nil, fmt.Errorf("wlgo: nil wl_client pointer")
	}

	nativeMu.Lock()
	defer nativeMu.Unlock()
	if nb, ok := nativeClients[clientPtr]; ok {
		return nb.client, nil
	}
	c := &Client{}
	nb := &nativeBackend{
		client:    c,
		clientPtr: clientPtr,
		byID:      make(map[uint32]*object),
		byPtr:     make(map[uintptr]*object),
	}
	c.backend = nb
	nativeClients[clientPtr] = nb
	return c, nil
}

// orphanBackend holds handles wrapped from foreign pointers whose
// wl_client was never bound through BindNativeClient, and already-dead
// placeholder objects.
func orphanBackend() *nativeBackend {
	nativeMu.Lock()
	defer nativeMu.Unlock()
	if orphans == nil {
		orphans = &nativeBackend{
			byID:  make(map[uint32]*object),
			byPtr: make(map[uintptr]*object),
		}
	}
	return orphans
}

func backendForNativeClient(clientPtr uintptr) *nativeBackend {
	nativeMu.Lock()
	nb, ok := nativeClients[clientPtr]
	nativeMu.Unlock()
	if ok {
		return nb
	}
	return orphanBackend()
}

func (nb *nativeBackend) create(iface *Interface, version, id uint32, c *Client) (*object, error) {
	if version > iface.Version {
		return nil, fmt.Errorf("%w: %s version %d, interface supports %d",
			ErrVersionTooNew, iface.Name, version, iface.Version)
	}
	ptr := native.ResourceCreate(nb.clientPtr, internIface(iface), int32(version), id)
	if ptr == 0 {
		return nil, fmt.Errorf("wlgo: wl_resource_create failed for %s@%d", iface.Name, id)
	}
	return nb.adopt(ptr, iface, c), nil
}

// adopt registers a managed object for a wl_resource this library is
// responsible for, wiring the destroy listener that keeps the local
// liveness flag in sync with the canonical owner.
func (nb *nativeBackend) adopt(ptr uintptr, iface *Interface, c *Client) *object {
	o := &object{
		id:       native.ResourceGetID(ptr),
		version:  uint32(native.ResourceGetVersion(ptr)),
		iface:    iface,
		native:   ptr,
		client:   c,
		userData: &UserData{},
		backend:  nb,
	}
	o.alive.Store(true)

	nb.mu.Lock()
	nb.byID[o.id] = o
	nb.byPtr[ptr] = o
	nb.mu.Unlock()

	native.AddDestroyListener(ptr, func() { nb.onNativeDestroy(o) })
	return o
}

// onNativeDestroy runs inside the C destroy call, whether the
// destruction originated from markDead or from the external side.
func (nb *nativeBackend) onNativeDestroy(o *object) {
	if !o.kill() {
		return
	}
	nb.mu.Lock()
	delete(nb.byID, o.id)
	delete(nb.byPtr, o.native)
	nb.mu.Unlock()
}

func (nb *nativeBackend) lookup(id uint32) (*object, bool) {
	nb.mu.Lock()
	o, ok := nb.byID[id]
	nb.mu.Unlock()
	if ok {
		return o, true
	}
	// The external side may hold objects this registry never created.
	ptr := native.ClientGetObject(nb.clientPtr, id)
	if ptr == 0 {
		return nil, false
	}
	return nb.foreign(ptr, id, foreignInterface), true
}

// foreignInterface stands in for objects whose descriptor is unknown
// because they were created entirely outside this library.
var foreignInterface = &Interface{Name: "(external)"}

// foreign wraps a wl_resource owned elsewhere. The object is external:
// its lifetime is untracked, it reports dead, and user data cannot be
// attached.
func (nb *nativeBackend) foreign(ptr uintptr, id uint32, iface *Interface) *object {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if o, ok := nb.byPtr[ptr]; ok {
		return o
	}
	o := &object{
		id:       id,
		iface:    iface,
		external: true,
		native:   ptr,
		client:   nb.client,
		userData: &UserData{sealed: true},
		backend:  nb,
	}
	nb.byPtr[ptr] = o
	return o
}

func (nb *nativeBackend) markDead(o *object) {
	if o.external || !o.alive.Load() {
		return
	}
	// The destroy listener fires synchronously and cascades into
	// onNativeDestroy.
	native.ResourceDestroy(o.native)
}

func (nb *nativeBackend) sendEvent(o *object, msg Message) {
	if !o.external && !o.alive.Load() {
		Logger().Debug("dropping event for dead object",
			zap.String("interface", o.iface.Name),
			zap.Uint32("id", o.id),
			zap.Uint16("opcode", msg.Opcode))
		return
	}
	if err := native.PostEventArray(o.native, uint32(msg.Opcode), msg.Args); err != nil {
		Logger().Warn("event transmission failed",
			zap.String("interface", o.iface.Name),
			zap.Uint32("id", o.id),
			zap.Uint16("opcode", msg.Opcode),
			zap.Error(err))
	}
}

func (nb *nativeBackend) dispatch(o *object, msg Message) {
	o.dispatchRequest(msg)
}

func (nb *nativeBackend) liveVersion(o *object) uint32 {
	if o.native == 0 || (!o.alive.Load() && !o.external) {
		return 0
	}
	return uint32(native.ResourceGetVersion(o.native))
}

func (nb *nativeBackend) postError(o *object, code uint32, msg string) {
	if !o.alive.Load() && !o.external {
		return
	}
	native.PostError(o.native, code, msg)
	if c := o.clientRef(); c != nil {
		c.fault(o.id, code, msg)
	}
}

func (nb *nativeBackend) all() []*object {
	nb.mu.Lock()
	objs := make([]*object, 0, len(nb.byID))
	for _, o := range nb.byID {
		objs = append(objs, o)
	}
	nb.mu.Unlock()
	sort.Slice(objs, func(i, j int) bool { return objs[i].id < objs[j].id })
	return objs
}

// release drops the clientPtr binding after a Kill cascade.
func (nb *nativeBackend) release() {
	nativeMu.Lock()
	delete(nativeClients, nb.clientPtr)
	nativeMu.Unlock()
}

func internIface(iface *Interface) uintptr {
	spec := native.InterfaceSpec{
		Name:    iface.Name,
		Version: int32(iface.Version),
	}
	for _, m := range iface.Requests {
		spec.Requests = append(spec.Requests, native.MessageSpec{Name: m.Name, Signature: m.Signature})
	}
	for _, m := range iface.Events {
		spec.Events = append(spec.Events, native.MessageSpec{Name: m.Name, Signature: m.Signature})
	}
	return native.InternInterface(spec)
}

// CPtr returns the raw wl_resource pointer underlying this handle, for
// interfacing with C libraries that need access to wayland objects.
// Returns 0 for objects of the self-contained backend.
func (r Resource[I]) CPtr() uintptr {
	return r.obj.native
}

// IsExternal reports whether the object is owned by a foreign native
// library rather than managed by wlgo. See FromCPtr.
func (r Resource[I]) IsExternal() bool {
	return r.obj.external
}

// InitFromCPtr takes control of a newly created wl_resource and returns
// a managed handle for it. The pointer must be fresh: never used and
// with no listener attached. To tolerate protocol races, a 0 pointer
// yields an already-dead handle.
func InitFromCPtr[I InterfaceTag](ptr uintptr) Resource[I] {
	var tag I
	if ptr == 0 {
		return deadResource[I]()
	}
	nb := backendForNativeClient(native.ResourceGetClient(ptr))
	return Resource[I]{obj: nb.adopt(ptr, tag.Descriptor(), nb.client)}
}

// FromCPtr wraps an existing wl_resource pointer.
//
// If the pointer belongs to an object already tracked by wlgo (for
// example one previously obtained through CPtr), the result is another
// handle to that same object, exactly as copying the handle would be.
//
// If the object was created by some other library, the handle is
// external: lifetime tracking is absent, IsAlive always returns false,
// Version returns 0, and attaching user data panics. The caller is
// responsible for not using the object past its destruction.
//
// To tolerate protocol races, a 0 pointer yields an already-dead handle.
func FromCPtr[I InterfaceTag](ptr uintptr) Resource[I] {
	var tag I
	if ptr == 0 {
		return deadResource[I]()
	}
	nb := backendForNativeClient(native.ResourceGetClient(ptr))
	nb.mu.Lock()
	o, ok := nb.byPtr[ptr]
	nb.mu.Unlock()
	if ok {
		return Resource[I]{obj: o}
	}
	return Resource[I]{obj: nb.foreign(ptr, native.ResourceGetID(ptr), tag.Descriptor())}
}

// MakeChildFor instantiates a child object of interface J under the
// given id, on the same client and at the same version as the parent.
// For use by generated code handling requests that create objects.
func MakeChildFor[J InterfaceTag](parent Object, id uint32) (Resource[J], bool) {
	po := parent.state()
	nb, ok := po.backend.(*nativeBackend)
	if !ok || !po.alive.Load() {
		return Resource[J]{}, false
	}
	var tag J
	o, err := nb.create(tag.Descriptor(), uint32(native.ResourceGetVersion(po.native)), id, po.clientRef())
	if err != nil {
		return Resource[J]{}, false
	}
	return Resource[J]{obj: o}, true
}

func deadResource[I InterfaceTag]() Resource[I] {
	var tag I
	return Resource[I]{obj: &object{
		iface:    tag.Descriptor(),
		userData: &UserData{},
		backend:  orphanBackend(),
	}}
}
