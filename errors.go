package wlgo

import "errors"

// Common errors
var (
	// ErrNoSuchObject indicates a dispatch targeted an object id that is
	// not (or no longer) registered. The driver should treat this as a
	// protocol error by the client, not as library failure.
	ErrNoSuchObject = errors.New("wlgo: no such object")

	// ErrIDInUse indicates an explicit object id is already registered.
	ErrIDInUse = errors.New("wlgo: object id already in use")

	// ErrVersionTooNew indicates a requested object version exceeds the
	// interface's maximum supported version.
	ErrVersionTooNew = errors.New("wlgo: requested version exceeds interface version")

	// ErrFilterAlreadySet indicates the object already has a filter
	// registered for that slot. Filters are set at most once per object.
	ErrFilterAlreadySet = errors.New("wlgo: filter already set on object")

	// ErrFilterBound indicates the filter is already bound to another
	// object. Filters are never rebound or shared across objects.
	ErrFilterBound = errors.New("wlgo: filter already bound to another object")

	// ErrUserDataUnset indicates the user data slot holds no value yet.
	ErrUserDataUnset = errors.New("wlgo: user data not set")

	// ErrUserDataType indicates the user data slot holds a value of a
	// different type than requested.
	ErrUserDataType = errors.New("wlgo: user data has different type")

	// ErrNativeUnavailable indicates the native libwayland-server backend
	// is not compiled in on this platform.
	ErrNativeUnavailable = errors.New("wlgo: native backend not available on this platform")
)
