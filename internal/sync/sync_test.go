package sync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"

	"github.com/illarion/passvault/internal/vaultfile"
)

func validVault(t *testing.T, fill byte) []byte {
	t.Helper()
	raw, err := vaultfile.DefaultFormat().Marshal(vaultfile.Data{
		Salt:       bytes.Repeat([]byte{fill}, 16),
		Nonce:      bytes.Repeat([]byte{fill}, 12),
		Ciphertext: []byte("ciphertext"),
		Tag:        bytes.Repeat([]byte{fill}, 16),
	})
	if err != nil {
		t.Fatalf("Failed to marshal vault: %v", err)
	}
	return raw
}

// remote is an in-memory PUT/GET blob server.
type remote struct {
	mu   stdsync.Mutex
	data []byte
}

func (r *remote) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch req.Method {
	case http.MethodPut:
		b, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		r.data = b
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		if r.data == nil {
			http.NotFound(w, req)
			return
		}
		w.Write(r.data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestHTTPPushPull(t *testing.T) {
	rem := &remote{}
	srv := httptest.NewServer(rem)
	defer srv.Close()

	dir := t.TempDir()
	local := filepath.Join(dir, "vault.bin")
	raw := validVault(t, 7)
	if err := os.WriteFile(local, raw, 0600); err != nil {
		t.Fatal(err)
	}

	s := NewHTTPSyncer(srv.URL, vaultfile.DefaultFormat())
	ctx := context.Background()

	if err := s.Push(ctx, local); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if !bytes.Equal(rem.data, raw) {
		t.Fatal("Remote does not hold the pushed vault")
	}

	other := filepath.Join(dir, "other.bin")
	if err := s.Pull(ctx, other); err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	got, err := os.ReadFile(other)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("Pulled vault differs from pushed one")
	}
	info, err := os.Stat(other)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Pulled vault has mode %v", info.Mode().Perm())
	}
}

func TestHTTPPullMissing(t *testing.T) {
	srv := httptest.NewServer(&remote{})
	defer srv.Close()

	s := NewHTTPSyncer(srv.URL, vaultfile.DefaultFormat())
	err := s.Pull(context.Background(), filepath.Join(t.TempDir(), "vault.bin"))
	if !errors.Is(err, ErrNoRemote) {
		t.Errorf("Expected ErrNoRemote, got %v", err)
	}
}

func TestHTTPPullRejectsInvalid(t *testing.T) {
	rem := &remote{data: []byte("<html>login required</html>")}
	srv := httptest.NewServer(rem)
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "vault.bin")
	orig := validVault(t, 1)
	if err := os.WriteFile(local, orig, 0600); err != nil {
		t.Fatal(err)
	}

	s := NewHTTPSyncer(srv.URL, vaultfile.DefaultFormat())
	err := s.Pull(context.Background(), local)
	if !errors.Is(err, vaultfile.ErrMalformed) {
		t.Fatalf("Expected ErrMalformed, got %v", err)
	}

	got, _ := os.ReadFile(local)
	if !bytes.Equal(got, orig) {
		t.Error("Local vault must survive an invalid download")
	}
}

func TestHTTPPushRejectsInvalidLocal(t *testing.T) {
	rem := &remote{}
	srv := httptest.NewServer(rem)
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "vault.bin")
	if err := os.WriteFile(local, []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewHTTPSyncer(srv.URL, vaultfile.DefaultFormat())
	if err := s.Push(context.Background(), local); !errors.Is(err, vaultfile.ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
	if rem.data != nil {
		t.Error("Invalid vault must not be uploaded")
	}
}

func TestHTTPServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "vault.bin")
	if err := os.WriteFile(local, validVault(t, 2), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewHTTPSyncer(srv.URL, vaultfile.DefaultFormat())
	if err := s.Push(context.Background(), local); err == nil {
		t.Error("Push should fail on server error")
	}
	if err := s.Pull(context.Background(), local); err == nil {
		t.Error("Pull should fail on server error")
	}
}

func TestHTTPNotConfigured(t *testing.T) {
	s := NewHTTPSyncer("", vaultfile.DefaultFormat())
	if err := s.Pull(context.Background(), "vault.bin"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
