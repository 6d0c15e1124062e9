package wlgo

// MessageDesc describes one request or event of an interface.
type MessageDesc struct {
	// Name is the message name from the protocol XML, e.g. "set_title".
	Name string
	// Since is the minimum interface version that carries this message.
	Since uint32
	// Signature is the wire signature, e.g. "usu". Only the native
	// backend consumes it, to build libwayland message tables; the
	// self-contained backend leaves argument encoding to the driver.
	Signature string
}

// Interface is the static descriptor of one protocol object type:
// its name, the maximum version this server supports, and the opcode
// tables for requests and events. Descriptors are produced by the
// protocol scanner; wlgo never hardcodes protocol-specific tables.
type Interface struct {
	Name     string
	Version  uint32
	Requests []MessageDesc
	Events   []MessageDesc
}

// InterfaceTag is the constraint for the compile-time interface tag of a
// Resource. Tag types are zero-size values emitted by the scanner, one
// per interface, whose Descriptor method returns the shared descriptor.
type InterfaceTag interface {
	Descriptor() *Interface
}

// Message is one decoded protocol message: a request arriving from the
// client or an event about to be sent to it. Args hold the decoded
// arguments in signature order; wlgo treats them as opaque.
type Message struct {
	Opcode uint16
	Args   []any
}

// Transport serializes and transmits events for a self-contained client.
// The driver that owns the connection supplies one per client; wire
// framing is its concern, wlgo only hands over the decoded tuple.
type Transport interface {
	WriteEvent(objectID uint32, opcode uint16, args []any) error
}
