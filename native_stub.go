//go:build !((linux || freebsd) && (amd64 || arm64))

package wlgo

// The native backend binds libwayland-server through purego, which this
// library supports on 64-bit linux and freebsd only. Everything in this
// file is the stub rendition: constructors report ErrNativeUnavailable,
// and the pointer-interop helpers panic, since calling them on a
// platform without libwayland is a build configuration bug rather than
// a runtime condition.

const nativeUnavailableMsg = "wlgo: native backend requires (linux || freebsd) && (amd64 || arm64)"

// Init reports that the native backend is not available on this platform.
func Init() error {
	return ErrNativeUnavailable
}

// BindNativeClient is unavailable on this platform.
func BindNativeClient(clientPtr uintptr) (*Client, error) {
	return nil, ErrNativeUnavailable
}

// CPtr returns 0: objects on this platform never wrap a wl_resource.
func (r Resource[I]) CPtr() uintptr {
	return 0
}

// IsExternal returns false: externally-owned objects only exist with the
// native backend.
func (r Resource[I]) IsExternal() bool {
	return false
}

// InitFromCPtr is unavailable on this platform.
func InitFromCPtr[I InterfaceTag](ptr uintptr) Resource[I] {
	panic(nativeUnavailableMsg)
}

// FromCPtr is unavailable on this platform.
func FromCPtr[I InterfaceTag](ptr uintptr) Resource[I] {
	panic(nativeUnavailableMsg)
}

// MakeChildFor is unavailable on this platform.
func MakeChildFor[J InterfaceTag](parent Object, id uint32) (Resource[J], bool) {
	panic(nativeUnavailableMsg)
}
