// Package platform provides platform detection and shared-library naming
// for wlgo. The native backend binds libwayland-server, which only ships
// on Unix-like systems; everything here assumes ELF-style versioned
// library names except on Darwin, where Wayland builds exist via ports.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit.
// The native backend only supports 64-bit platforms due to purego limitations.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// SupportsNative indicates whether the native libwayland-server backend
// can be built on this platform.
const SupportsNative = (runtime.GOOS == "linux" || runtime.GOOS == "freebsd") &&
	(runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64")

// LibraryName returns the platform-specific shared library filename.
// If soVersion is negative, returns the unversioned name.
//
// Examples:
//   - Linux:  LibraryName("wayland-server", 0) -> "libwayland-server.so.0"
//   - Darwin: LibraryName("wayland-server", 0) -> "libwayland-server.0.dylib"
func LibraryName(name string, soVersion int) string {
	switch runtime.GOOS {
	case "darwin":
		if soVersion >= 0 {
			return fmt.Sprintf("lib%s.%d.dylib", name, soVersion)
		}
		return fmt.Sprintf("lib%s.dylib", name)
	default: // linux, freebsd
		if soVersion >= 0 {
			return fmt.Sprintf("lib%s.so.%d", name, soVersion)
		}
		return fmt.Sprintf("lib%s.so", name)
	}
}
