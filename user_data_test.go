package wlgo

import (
	"errors"
	"sync"
	"testing"
)

func TestUserDataSetOnce(t *testing.T) {
	var u UserData
	if !u.Set(1) {
		t.Fatal("first Set rejected")
	}
	if u.Set(2) {
		t.Fatal("second Set accepted")
	}
	if got := u.Get(); got != 1 {
		t.Fatalf("Get() = %v, want the first value", got)
	}
}

func TestUserDataAsDistinguishesErrors(t *testing.T) {
	var u UserData

	if _, err := UserDataAs[int](&u); !errors.Is(err, ErrUserDataUnset) {
		t.Fatalf("empty slot: %v, want ErrUserDataUnset", err)
	}

	u.Set("text")
	if _, err := UserDataAs[int](&u); !errors.Is(err, ErrUserDataType) {
		t.Fatalf("mismatched type: %v, want ErrUserDataType", err)
	}
	if v, err := UserDataAs[string](&u); err != nil || v != "text" {
		t.Fatalf("matching type: %q, %v", v, err)
	}
}

func TestUserDataConcurrentSetHasOneWinner(t *testing.T) {
	var u UserData
	var wg sync.WaitGroup
	wins := make([]bool, 16)
	for i := range wins {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = u.Set(i)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, won := range wins {
		if won {
			winners++
			if got := u.Get(); got != i {
				t.Errorf("winner stored %d but slot holds %v", i, got)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("%d winners, want exactly 1", winners)
	}
}

func TestUserDataSealedPanics(t *testing.T) {
	u := &UserData{sealed: true}
	defer func() {
		if recover() == nil {
			t.Fatal("Set on a sealed slot did not panic")
		}
	}()
	u.Set(1)
}
