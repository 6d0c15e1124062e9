//go:build (linux || freebsd) && (amd64 || arm64)

package native

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/wlgo/internal/handles"
)

// C struct mirrors. Layouts match the 64-bit libwayland headers; Go
// heap objects do not move, so pointers into these structs stay valid
// for as long as we retain the Go value.

// struct wl_message
type cMessage struct {
	name      *byte
	signature *byte
	types     *uintptr
}

// struct wl_interface
type cInterface struct {
	name        *byte
	version     int32
	methodCount int32
	methods     *cMessage
	eventCount  int32
	_           int32
	events      *cMessage
}

// struct wl_listener
type cListener struct {
	prev   uintptr
	next   uintptr
	notify uintptr
}

// MessageSpec describes one request or event for the C message table.
type MessageSpec struct {
	Name      string
	Signature string
}

// InterfaceSpec describes a protocol interface for the C side.
type InterfaceSpec struct {
	Name     string
	Version  int32
	Requests []MessageSpec
	Events   []MessageSpec
}

var (
	internMu    sync.Mutex
	interned    = make(map[string]*cInterface)
	internAlive []any // retains byte slices and tables reachable from C
)

// InternInterface builds (once per name) the C-compatible wl_interface
// structure for a protocol interface and returns its address. The
// structure and everything it references are retained for the lifetime
// of the process; interface descriptors are static data.
func InternInterface(spec InterfaceSpec) uintptr {
	internMu.Lock()
	defer internMu.Unlock()

	if iface, ok := interned[spec.Name]; ok {
		return uintptr(unsafe.Pointer(iface))
	}

	iface := &cInterface{
		version:     spec.Version,
		methodCount: int32(len(spec.Requests)),
		eventCount:  int32(len(spec.Events)),
	}
	iface.name = internCString(spec.Name)
	iface.methods = internMessages(spec.Requests)
	iface.events = internMessages(spec.Events)

	interned[spec.Name] = iface
	return uintptr(unsafe.Pointer(iface))
}

func internMessages(specs []MessageSpec) *cMessage {
	if len(specs) == 0 {
		return nil
	}
	msgs := make([]cMessage, len(specs))
	for i, spec := range specs {
		msgs[i].name = internCString(spec.Name)
		msgs[i].signature = internCString(spec.Signature)
		// One (null) interface slot per argument; wlgo leaves
		// object-typed argument validation to the caller.
		if n := signatureArgCount(spec.Signature); n > 0 {
			types := make([]uintptr, n)
			msgs[i].types = &types[0]
			internAlive = append(internAlive, types)
		}
	}
	internAlive = append(internAlive, msgs)
	return &msgs[0]
}

func internCString(s string) *byte {
	b := cstring(s)
	internAlive = append(internAlive, b)
	return &b[0]
}

func cstring(s string) []byte {
	return append([]byte(s), 0)
}

func keepAlive(refs ...[]byte) {
	for _, b := range refs {
		runtime.KeepAlive(b)
	}
}

// signatureArgCount counts the arguments in a wire signature, skipping
// since-version digits and the '?' nullable marker.
func signatureArgCount(sig string) int {
	n := 0
	for _, r := range sig {
		switch r {
		case '?':
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		default:
			n++
		}
	}
	return n
}

// PostEventArray marshals args into wl_argument slots and posts the
// event through libwayland-server, which serializes and transmits it.
func PostEventArray(res uintptr, opcode uint32, args []any) error {
	if !loaded {
		return ErrNotLoaded
	}
	if res == 0 {
		return nil
	}

	slots := make([]uint64, len(args)+1) // never empty; &slots[0] must exist
	var pinned [][]byte
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			slots[i] = 0
		case int:
			slots[i] = uint64(uint32(int32(v)))
		case int32:
			slots[i] = uint64(uint32(v))
		case uint32:
			slots[i] = uint64(v)
		case uintptr:
			slots[i] = uint64(v)
		case string:
			b := cstring(v)
			pinned = append(pinned, b)
			slots[i] = uint64(uintptr(unsafe.Pointer(&b[0])))
		case []byte:
			if len(v) == 0 {
				slots[i] = 0
				break
			}
			pinned = append(pinned, v)
			slots[i] = uint64(uintptr(unsafe.Pointer(&v[0])))
		default:
			return fmt.Errorf("wlgo: cannot marshal %T as a wire argument", arg)
		}
	}

	resourcePostEventArray(res, opcode, uintptr(unsafe.Pointer(&slots[0])))
	runtime.KeepAlive(slots)
	for _, b := range pinned {
		runtime.KeepAlive(b)
	}
	return nil
}

var (
	notifyOnce sync.Once
	notifyCB   uintptr
)

// destroyHook pairs a listener struct with the Go callback it triggers.
// Retaining it in the handles table also keeps the listener memory
// alive while the C side holds a pointer to it.
type destroyHook struct {
	l  *cListener
	fn func()
}

// AddDestroyListener registers fn to run when the C side destroys the
// wl_resource. The callback fires synchronously inside the destroy
// call, on whichever thread drives the native event loop.
func AddDestroyListener(res uintptr, fn func()) {
	if !loaded || res == 0 {
		return
	}
	notifyOnce.Do(func() {
		notifyCB = purego.NewCallback(func(listener, data uintptr) {
			if h, ok := handles.Get(listener).(*destroyHook); ok {
				handles.Delete(listener)
				h.fn()
			}
		})
	})

	hook := &destroyHook{l: &cListener{notify: notifyCB}, fn: fn}
	key := uintptr(unsafe.Pointer(hook.l))
	handles.Put(key, hook)
	resourceAddDestroyListener(res, key)
}
