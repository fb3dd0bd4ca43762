package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	want := Credentials{
		Token:   "tok-abc",
		Email:   "buyer@campus.example",
		UserID:  7,
		IsAdmin: true,
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestFileStoreLoadEmpty(t *testing.T) {
	store := newTestFileStore(t)

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Load() on empty store: got %v, want ErrNoCredentials", err)
	}
}

func TestFileStoreClearRemovesAllFields(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	creds := Credentials{Token: "tok", Email: "a@b.c", UserID: 1}
	if err := store.Save(ctx, creds); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	// Nothing from the previous login may remain readable.
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Load() after Clear(): got %v, want ErrNoCredentials", err)
	}

	// Clearing twice is fine.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second Clear() error: %v", err)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	first := Credentials{Token: "tok-1", Email: "one@x.y", UserID: 1, IsAdmin: true}
	second := Credentials{Token: "tok-2", Email: "two@x.y", UserID: 2}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != second {
		t.Errorf("Load() = %+v, want %+v (no stale fields)", got, second)
	}
}

func TestFileStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	store := newTestFileStore(t)

	if err := store.Save(context.Background(), Credentials{Token: "tok"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	info, err := os.Stat(store.path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials file mode = %o, want 600", perm)
	}
}
