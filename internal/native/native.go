//go:build (linux || freebsd) && (amd64 || arm64)

// Package native handles loading libwayland-server and registering
// function bindings using purego. It is the delegation boundary of the
// native backend: object creation, event posting and destruction are
// carried out by the C library, and wlgo only projects over its state.
package native

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/wlgo/internal/platform"
)

// ErrNotLoaded is returned when native functions are called before Load().
var ErrNotLoaded = errors.New("wlgo: libwayland-server not loaded; call wlgo.Init() first")

// ErrLibraryNotFound is returned when libwayland-server cannot be found.
var ErrLibraryNotFound = errors.New("wlgo: libwayland-server not found")

var (
	libServer uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Function bindings. Pointer arguments travel as uintptr, matching the
// raw handles we hand out across the API.
var (
	resourceCreate             func(client uintptr, iface uintptr, version int32, id uint32) uintptr
	resourceDestroy            func(res uintptr)
	resourceGetID              func(res uintptr) uint32
	resourceGetVersion         func(res uintptr) int32
	resourceGetClient          func(res uintptr) uintptr
	resourcePostEventArray     func(res uintptr, opcode uint32, args uintptr)
	resourceAddDestroyListener func(res uintptr, listener uintptr)
	clientGetObject            func(client uintptr, id uint32) uintptr

	// wl_resource_post_error is variadic, which RegisterLibFunc cannot
	// express; it is called through SyscallN with integer-only varargs.
	postErrorAddr uintptr
)

// IsLoaded returns true if libwayland-server has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads libwayland-server and registers all function bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	var err error
	libServer, err = loadLibrary("wayland-server", []int{0})
	if err != nil {
		return fmt.Errorf("loading libwayland-server: %w", err)
	}

	purego.RegisterLibFunc(&resourceCreate, libServer, "wl_resource_create")
	purego.RegisterLibFunc(&resourceDestroy, libServer, "wl_resource_destroy")
	purego.RegisterLibFunc(&resourceGetID, libServer, "wl_resource_get_id")
	purego.RegisterLibFunc(&resourceGetVersion, libServer, "wl_resource_get_version")
	purego.RegisterLibFunc(&resourceGetClient, libServer, "wl_resource_get_client")
	purego.RegisterLibFunc(&resourcePostEventArray, libServer, "wl_resource_post_event_array")
	purego.RegisterLibFunc(&resourceAddDestroyListener, libServer, "wl_resource_add_destroy_listener")
	purego.RegisterLibFunc(&clientGetObject, libServer, "wl_client_get_object")

	postErrorAddr, err = purego.Dlsym(libServer, "wl_resource_post_error")
	if err != nil {
		return fmt.Errorf("resolving wl_resource_post_error: %w", err)
	}
	return nil
}

// loadLibrary attempts to load a library by trying versioned names in
// each search path, then letting the system resolver find it.
func loadLibrary(name string, soVersions []int) (uintptr, error) {
	for _, searchPath := range librarySearchPaths() {
		for _, ver := range soVersions {
			lib, err := tryOpen(filepath.Join(searchPath, platform.LibraryName(name, ver)))
			if err == nil {
				return lib, nil
			}
		}
		lib, err := tryOpen(filepath.Join(searchPath, platform.LibraryName(name, -1)))
		if err == nil {
			return lib, nil
		}
	}

	for _, ver := range soVersions {
		lib, err := tryOpen(platform.LibraryName(name, ver))
		if err == nil {
			return lib, nil
		}
	}
	lib, err := tryOpen(platform.LibraryName(name, -1))
	if err == nil {
		return lib, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// librarySearchPaths returns the library search paths, most specific
// first. WLGO_LIBDIR wins over LD_LIBRARY_PATH and the standard system
// locations.
func librarySearchPaths() []string {
	var paths []string
	if dir := os.Getenv("WLGO_LIBDIR"); dir != "" {
		paths = append(paths, dir)
	}
	if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
		paths = append(paths, filepath.SplitList(ldPath)...)
	}
	paths = append(paths,
		"/usr/lib/x86_64-linux-gnu",
		"/usr/lib/aarch64-linux-gnu",
		"/usr/local/lib",
		"/usr/lib",
		"/lib/x86_64-linux-gnu",
		"/lib",
	)
	return paths
}

// ResourceCreate asks libwayland-server to create a wl_resource for the
// given client. id 0 lets the library allocate one from the server
// range. Returns the wl_resource pointer, 0 on failure.
func ResourceCreate(client, iface uintptr, version int32, id uint32) uintptr {
	if !loaded {
		return 0
	}
	return resourceCreate(client, iface, version, id)
}

// ResourceDestroy destroys a wl_resource. Destroy listeners registered
// on the resource fire synchronously from inside this call.
func ResourceDestroy(res uintptr) {
	if !loaded || res == 0 {
		return
	}
	resourceDestroy(res)
}

// ResourceGetID returns the object id of a wl_resource.
func ResourceGetID(res uintptr) uint32 {
	if !loaded || res == 0 {
		return 0
	}
	return resourceGetID(res)
}

// ResourceGetVersion returns the negotiated version of a wl_resource.
func ResourceGetVersion(res uintptr) int32 {
	if !loaded || res == 0 {
		return 0
	}
	return resourceGetVersion(res)
}

// ResourceGetClient returns the wl_client owning a wl_resource.
func ResourceGetClient(res uintptr) uintptr {
	if !loaded || res == 0 {
		return 0
	}
	return resourceGetClient(res)
}

// ClientGetObject looks an object id up in the client's native table.
// Returns the wl_resource pointer, 0 when the id is unknown.
func ClientGetObject(client uintptr, id uint32) uintptr {
	if !loaded || client == 0 {
		return 0
	}
	return clientGetObject(client, id)
}

// PostError posts a fatal protocol error on a wl_resource. The message
// is passed through a "%s" format so client-controlled text is never
// interpreted as a format string.
func PostError(res uintptr, code uint32, msg string) {
	if !loaded || res == 0 {
		return
	}
	format := cstring("%s")
	text := cstring(msg)
	// Integer/pointer varargs only; safe for SyscallN on both amd64
	// and arm64 System V targets.
	purego.SyscallN(postErrorAddr, res, uintptr(code),
		uintptr(unsafe.Pointer(&format[0])), uintptr(unsafe.Pointer(&text[0])))
	keepAlive(format, text)
}
