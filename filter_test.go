package wlgo

import (
	"errors"
	"testing"
)

func TestAssignDeliversRequests(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testSurfaceTag](c, 1)

	var got []Message
	if err := res.AssignFunc(func(r Resource[testSurfaceTag], msg Message) {
		if !r.Equals(res) {
			t.Error("handler received a handle to a different object")
		}
		got = append(got, msg)
	}); err != nil {
		t.Fatalf("AssignFunc: %v", err)
	}

	if err := c.Dispatch(res.ID(), 1, []any{uint32(7), int32(0), int32(0)}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(got) != 1 || got[0].Opcode != 1 {
		t.Fatalf("handler saw %v", got)
	}
}

func TestAssignIsExclusive(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testSurfaceTag](c, 1)

	var firstCalls, secondCalls int
	if err := res.Assign(NewFilter(func(Object, *Message) { firstCalls++ })); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	err := res.Assign(NewFilter(func(Object, *Message) { secondCalls++ }))
	if !errors.Is(err, ErrFilterAlreadySet) {
		t.Fatalf("second Assign: %v, want ErrFilterAlreadySet", err)
	}

	// The failed assignment must not disturb the first registration.
	c.Dispatch(res.ID(), 0, nil)
	if firstCalls != 1 || secondCalls != 0 {
		t.Fatalf("first filter ran %d times, rejected filter %d times", firstCalls, secondCalls)
	}
}

func TestFilterBindsToOneObject(t *testing.T) {
	c, _ := newTestClient()
	a, _ := New[testSurfaceTag](c, 1)
	b, _ := New[testSurfaceTag](c, 1)

	f := NewFilter(func(Object, *Message) {})
	if err := a.Assign(f); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := b.Assign(f); !errors.Is(err, ErrFilterBound) {
		t.Fatalf("Assign to second object: %v, want ErrFilterBound", err)
	}
}

func TestSharedRequestAndDestructorFilter(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testSurfaceTag](c, 1)

	var requests, destroys int
	f := NewFilter(func(o Object, msg *Message) {
		if msg == nil {
			destroys++
			return
		}
		requests++
	})
	if err := res.Assign(f); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := res.AssignDestructor(f); err != nil {
		t.Fatalf("AssignDestructor with the same filter: %v", err)
	}

	c.Dispatch(res.ID(), 0, nil)
	res.Destroy()
	if requests != 1 || destroys != 1 {
		t.Fatalf("requests=%d destroys=%d", requests, destroys)
	}
}

func TestWhenFiltersRequestsButNotDestruction(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testSurfaceTag](c, 1)

	var opcodes []uint16
	var destroyed bool
	base := NewFilter(func(o Object, msg *Message) {
		if msg == nil {
			destroyed = true
			return
		}
		opcodes = append(opcodes, msg.Opcode)
	})
	guarded := base.When(func(o Object, msg *Message) bool {
		return msg.Opcode == 1
	})
	if err := res.Assign(guarded); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := res.AssignDestructor(guarded); err != nil {
		t.Fatalf("AssignDestructor: %v", err)
	}

	c.Dispatch(res.ID(), 0, nil)
	c.Dispatch(res.ID(), 1, nil)
	res.Destroy()

	if len(opcodes) != 1 || opcodes[0] != 1 {
		t.Errorf("guarded filter saw opcodes %v", opcodes)
	}
	if !destroyed {
		t.Error("destruction signal was filtered out")
	}
}

func TestChainInvokesInOrder(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testSurfaceTag](c, 1)

	var order []string
	chained := Chain(
		NewFilter(func(Object, *Message) { order = append(order, "a") }),
		NewFilter(func(Object, *Message) { order = append(order, "b") }),
	)
	if err := res.Assign(chained); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	c.Dispatch(res.ID(), 0, nil)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("invocation order %v", order)
	}
}

func TestDispatchWithoutFilterIsDropped(t *testing.T) {
	c, _ := newTestClient()
	res, _ := New[testSurfaceTag](c, 1)

	// No filter assigned; the request must vanish without error.
	if err := c.Dispatch(res.ID(), 0, nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.IsAlive() {
		t.Fatal("object died from an unhandled request")
	}
}
