package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/illarion/passvault/internal/vaultfile"
)

// fakeDrive answers the files.list and files.get?alt=media calls used by Pull.
func fakeDrive(t *testing.T, files map[string][]byte) *drive.Service {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/files"):
			var list drive.FileList
			for name := range files {
				if strings.Contains(r.URL.Query().Get("q"), "'"+name+"'") {
					list.Files = append(list.Files, &drive.File{Id: "id-" + name, Name: name})
				}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(&list)
		case strings.Contains(r.URL.Path, "/files/id-"):
			name := r.URL.Path[strings.LastIndex(r.URL.Path, "/id-")+4:]
			data, ok := files[name]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Write(data)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("Failed to create Drive service: %v", err)
	}
	return svc
}

func TestDrivePull(t *testing.T) {
	raw := validVault(t, 9)
	svc := fakeDrive(t, map[string][]byte{DefaultDriveFileName: raw})

	local := filepath.Join(t.TempDir(), "vault.bin")
	d := NewDriveSyncerWithService(svc, vaultfile.DefaultFormat())
	if err := d.Pull(context.Background(), local); err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	got, err := os.ReadFile(local)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("Pulled vault differs from the Drive file")
	}
}

func TestDrivePullMissing(t *testing.T) {
	svc := fakeDrive(t, map[string][]byte{})

	d := NewDriveSyncerWithService(svc, vaultfile.DefaultFormat())
	err := d.Pull(context.Background(), filepath.Join(t.TempDir(), "vault.bin"))
	if !errors.Is(err, ErrNoRemote) {
		t.Errorf("Expected ErrNoRemote, got %v", err)
	}
}

func TestDrivePullRejectsInvalid(t *testing.T) {
	svc := fakeDrive(t, map[string][]byte{DefaultDriveFileName: []byte("not a vault")})

	local := filepath.Join(t.TempDir(), "vault.bin")
	d := NewDriveSyncerWithService(svc, vaultfile.DefaultFormat())
	if err := d.Pull(context.Background(), local); !errors.Is(err, vaultfile.ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
	if _, err := os.Stat(local); !os.IsNotExist(err) {
		t.Error("Invalid download must not create the local vault")
	}
}

func TestDriveMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	d := NewDriveSyncer(filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json"), vaultfile.DefaultFormat())
	if err := d.Pull(context.Background(), filepath.Join(dir, "vault.bin")); err == nil {
		t.Error("Pull without credentials should fail")
	}
}
