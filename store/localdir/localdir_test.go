package localdir

import (
	"os"
	"testing"

	"xdao.co/carrier/store"
	"xdao.co/carrier/store/storetest"
)

func TestLocalDir_Conformance(t *testing.T) {
	storetest.RunConformance(t, func(t *testing.T) store.Store {
		t.Helper()
		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return s
	})
}

func TestLocalDir_DetectsCorruption(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("original artifact")
	id, err := s.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored object out-of-band.
	path := s.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := s.Get(id); err != store.ErrMismatch {
		t.Fatalf("Get after corruption: got %v want %v", err, store.ErrMismatch)
	}
	if _, err := s.Put(orig); err != store.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want %v", err, store.ErrImmutable)
	}
}

func TestLocalDir_EmptyRootRejected(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") succeeded")
	}
}
