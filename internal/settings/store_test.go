package settings

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func TestStore_SetGet(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set("session_token", "tok-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get("session_token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("Get() = %q, want %q", got, "tok-123")
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set("session_token", "old"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("session_token", "new"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	got, err := store.Get("session_token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing key err = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set("session_token", "tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete("session_token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get("session_token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op
	if err := store.Delete("session_token"); err != nil {
		t.Errorf("Delete missing key failed: %v", err)
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Set("session_token", "persisted"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() {
		if err := reopened.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	got, err := reopened.Get("session_token")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != "persisted" {
		t.Errorf("Get() = %q, want %q", got, "persisted")
	}
}
