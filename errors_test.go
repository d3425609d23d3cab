package locker

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	errs := []error{
		ErrInvalidName,
		ErrNotRegularFile,
		ErrPermission,
		ErrIO,
		ErrRange,
		ErrNotHeld,
	}

	for i, err := range errs {
		if err == nil {
			t.Errorf("error at index %d is nil", i)
		}
	}

	seen := make(map[string]int)
	for i, err := range errs {
		if j, dup := seen[err.Error()]; dup {
			t.Errorf("errors %d and %d share message %q", i, j, err.Error())
		}
		seen[err.Error()] = i
	}
}

func TestErrorWrapping(t *testing.T) {
	lk := New(Options{})
	_, err := lk.TryLock("")
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("errors.Is(%v, ErrInvalidName) = false", err)
	}
	if err.Error() == ErrInvalidName.Error() {
		t.Fatal("wrapped error carries no context")
	}
}
