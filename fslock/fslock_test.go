package fslock

import (
	"errors"
	"testing"

	"miniker/sched"
)

func TestGuardAcquiresAndReleases(t *testing.T) {
	sched.New(sched.PolicyPriority)
	called := false
	err := Guard(func() error {
		called = true
		if !FS.IsHeldByCurrent() {
			t.Error("FS should be held while fn runs")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Guard returned error: %v", err)
	}
	if !called {
		t.Fatal("fn was not called")
	}
	if FS.Holder() != nil {
		t.Fatal("FS should be released after Guard returns")
	}
}

func TestGuardReleasesOnError(t *testing.T) {
	sched.New(sched.PolicyPriority)
	want := errors.New("boom")
	err := Guard(func() error { return want })
	if err != want {
		t.Fatalf("Guard returned %v, want %v", err, want)
	}
	if FS.Holder() != nil {
		t.Fatal("FS should be released even when fn errors")
	}
}
