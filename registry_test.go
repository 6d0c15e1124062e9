package wlgo

import (
	"errors"
	"testing"
)

func TestCreateAndLookup(t *testing.T) {
	c, _ := newTestClient()
	res, err := NewWithID[testOutputTag](c, 3, 17)
	if err != nil {
		t.Fatalf("NewWithID: %v", err)
	}

	found, ok := Lookup[testOutputTag](c, 17)
	if !ok {
		t.Fatal("Lookup missed a live object")
	}
	if !found.Equals(res) {
		t.Fatal("Lookup returned a different object")
	}
}

func TestLookupChecksInterface(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testOutputTag](c, 3)

	if _, ok := Lookup[testSurfaceTag](c, res.ID()); ok {
		t.Fatal("Lookup matched across interfaces")
	}
}

func TestLookupMissesDestroyedObject(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testOutputTag](c, 3)
	id := res.ID()
	res.Destroy()

	if _, ok := Lookup[testOutputTag](c, id); ok {
		t.Fatal("Lookup found a destroyed object")
	}
}

func TestCreateRejectsExcessiveVersion(t *testing.T) {
	c, _ := newTestClient()
	_, err := New[testOutputTag](c, testOutputIface.Version+1)
	if !errors.Is(err, ErrVersionTooNew) {
		t.Fatalf("got %v, want ErrVersionTooNew", err)
	}
}

func TestCreateRejectsTakenID(t *testing.T) {
	c, _ := newTestClient()
	if _, err := NewWithID[testOutputTag](c, 3, 5); err != nil {
		t.Fatalf("NewWithID: %v", err)
	}
	_, err := NewWithID[testSurfaceTag](c, 1, 5)
	if !errors.Is(err, ErrIDInUse) {
		t.Fatalf("got %v, want ErrIDInUse", err)
	}
}

func TestServerAllocatedIDsAreSequential(t *testing.T) {
	c, _ := newTestClient()
	a, _ := New[testOutputTag](c, 3)
	b, _ := New[testOutputTag](c, 3)

	if a.ID() < serverIDBase {
		t.Errorf("server-allocated id %#x below the server range", a.ID())
	}
	if b.ID() != a.ID()+1 {
		t.Errorf("ids not sequential: %#x then %#x", a.ID(), b.ID())
	}
}

func TestAllocatorSkipsTakenIDs(t *testing.T) {
	c, _ := newTestClient()
	explicit, err := NewWithID[testOutputTag](c, 3, serverIDBase)
	if err != nil {
		t.Fatalf("NewWithID: %v", err)
	}
	allocated, err := New[testOutputTag](c, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if allocated.ID() == explicit.ID() {
		t.Fatalf("allocator reissued taken id %#x", explicit.ID())
	}
	found, ok := Lookup[testOutputTag](c, serverIDBase)
	if !ok || !found.Equals(explicit) {
		t.Fatal("explicit object no longer reachable under its id")
	}
	if !explicit.IsAlive() || !allocated.IsAlive() {
		t.Fatal("one of the objects lost liveness")
	}
}

func TestClientsAreIsolated(t *testing.T) {
	c1, _ := newTestClient()
	c2, _ := newTestClient()
	res, _ := NewWithID[testOutputTag](c1, 3, 9)

	if _, ok := Lookup[testOutputTag](c2, res.ID()); ok {
		t.Fatal("object visible through a different client")
	}
}
