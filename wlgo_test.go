package wlgo

import "sync"

// Test protocol: two small interfaces standing in for scanner output.

type testOutputTag struct{}

var testOutputIface = &Interface{
	Name:    "test_output",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "release", Since: 1, Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "geometry", Since: 1, Signature: "iiuu"},
		{Name: "done", Since: 2, Signature: ""},
		{Name: "scale", Since: 3, Signature: "i"},
	},
}

func (testOutputTag) Descriptor() *Interface { return testOutputIface }

type testSurfaceTag struct{}

var testSurfaceIface = &Interface{
	Name:    "test_surface",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Since: 1, Signature: ""},
		{Name: "attach", Since: 1, Signature: "?oii"},
	},
	Events: []MessageDesc{
		{Name: "enter", Since: 1, Signature: "o"},
	},
}

func (testSurfaceTag) Descriptor() *Interface { return testSurfaceIface }

type sentEvent struct {
	objectID uint32
	opcode   uint16
	args     []any
}

// recordingTransport captures every event handed to the transport, in
// order, and can be primed to fail.
type recordingTransport struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (t *recordingTransport) WriteEvent(objectID uint32, opcode uint16, args []any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.events = append(t.events, sentEvent{objectID, opcode, args})
	return nil
}

func (t *recordingTransport) sent() []sentEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]sentEvent, len(t.events))
	copy(out, t.events)
	return out
}

func newTestClient() (*Client, *recordingTransport) {
	tr := &recordingTransport{}
	return NewClient(tr), tr
}
