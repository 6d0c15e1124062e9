package handles

import (
	"sync"
	"testing"
)

func TestPutGetDelete(t *testing.T) {
	key := uintptr(0x1000)
	Put(key, "value")
	if got := Get(key); got != "value" {
		t.Fatalf("Get() = %v", got)
	}
	Delete(key)
	if got := Get(key); got != nil {
		t.Fatalf("Get() after Delete = %v", got)
	}
}

func TestPutReplaces(t *testing.T) {
	key := uintptr(0x2000)
	defer Delete(key)

	Put(key, 1)
	Put(key, 2)
	if got := Get(key); got != 2 {
		t.Fatalf("Get() = %v, want the replacement", got)
	}
}

func TestCount(t *testing.T) {
	before := Count()
	Put(0x3000, struct{}{})
	Put(0x3001, struct{}{})
	if got := Count(); got != before+2 {
		t.Fatalf("Count() = %d, want %d", got, before+2)
	}
	Delete(0x3000)
	Delete(0x3001)
	if got := Count(); got != before {
		t.Fatalf("Count() after cleanup = %d, want %d", got, before)
	}
}

func TestConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := uintptr(0x4000 + i)
			Put(key, i)
			if got := Get(key); got != i {
				t.Errorf("Get(%#x) = %v, want %d", key, got, i)
			}
			Delete(key)
		}(i)
	}
	wg.Wait()
}
