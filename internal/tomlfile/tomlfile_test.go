package tomlfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cfg", "session.toml")
	s, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error returned from New: %s", err.Error())
	}

	if _, ok, err := s.GetItem(ctx, "token"); err != nil || ok {
		t.Fatalf("expected a missing key before any write, got ok %t err %v", ok, err)
	}
	if err := s.RemoveItem(ctx, "token"); err != nil {
		t.Fatalf("expected removing from a missing file to succeed, got %s", err.Error())
	}
	if err := s.SetItem(ctx, "token", "T1"); err != nil {
		t.Fatalf("unexpected error returned from SetItem: %s", err.Error())
	}
	if s.Path() != path {
		t.Fatalf("unexpected path: %s", cmp.Diff(path, s.Path()))
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("expected the file to exist after a write, got %s", err.Error())
	}
	user := `{"_id":"u1","name":"Jane \"JD\" Doe"}`
	if err := s.SetItem(ctx, "user", user); err != nil {
		t.Fatalf("unexpected error returned from SetItem: %s", err.Error())
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error returned from New: %s", err.Error())
	}
	got, ok, err := reopened.GetItem(ctx, "user")
	if err != nil || !ok {
		t.Fatalf("expected user to be stored, got ok %t err %v", ok, err)
	}
	if diff := cmp.Diff(user, got); diff != "" {
		t.Fatalf("unexpected value: %s", diff)
	}

	if err := reopened.RemoveItem(ctx, "token"); err != nil {
		t.Fatalf("unexpected error returned from RemoveItem: %s", err.Error())
	}
	if _, ok, _ := s.GetItem(ctx, "token"); ok {
		t.Fatalf("expected token to be removed")
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("unexpected error returned from Keys: %s", err.Error())
	}
	if diff := cmp.Diff([]string{"user"}, keys); diff != "" {
		t.Fatalf("unexpected keys: %s", diff)
	}
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := os.WriteFile(path, []byte("items = [broken"), 0o600); err != nil {
		t.Fatalf("unexpected error writing fixture: %s", err.Error())
	}
	s, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error returned from New: %s", err.Error())
	}
	if _, _, err := s.GetItem(context.Background(), "token"); err == nil {
		t.Fatalf("expected an error for a corrupt file")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/x/session.toml")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	if !strings.HasPrefix(got, home) {
		t.Fatalf("expected %q to start with %q", got, home)
	}
	if _, err := expandPath("  "); err == nil {
		t.Fatalf("expected an error for an empty path")
	}
}
