// Package wlgo implements the server-side object model and message
// dispatch core of the Wayland wire protocol. It tracks every protocol
// object instantiated inside a client connection, routes decoded requests
// to registered filters, and emits events with version and liveness
// checks.
//
// Object lifetime is governed by protocol messages, not by Go reference
// counting: any number of Resource handles may refer to the same object,
// cloning a handle is cheap, and no handle keeps the object alive.
//
// Two interchangeable backends sit behind the same handle API. The
// self-contained backend keeps all object state in Go. The native backend
// (Linux/FreeBSD on 64-bit, loaded with purego) delegates object ownership
// to libwayland-server, so wlgo resources and C-side wl_resources can be
// mixed in one compositor.
//
// wlgo does not frame bytes on or off the socket, and it does not run an
// event loop. An external driver decodes incoming messages and pumps them
// through Client.Dispatch, one message at a time.
package wlgo
