package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/illarion/passvault/internal/vaultfile"
)

// DefaultDriveFileName is the name of the vault file on Google Drive.
const DefaultDriveFileName = "passvault.bin"

// DriveSyncer stores the vault as a file in the user's Google Drive.
type DriveSyncer struct {
	FileName string
	Format   vaultfile.Format

	service func(ctx context.Context) (*drive.Service, error)
}

// DefaultDrivePaths returns the credentials and token locations under the
// user config directory.
func DefaultDrivePaths() (credentials, token string) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	dir = filepath.Join(dir, "passvault")
	return filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json")
}

// NewDriveSyncer authenticates with an OAuth2 client config and a saved
// token, both JSON files.
func NewDriveSyncer(credentialsPath, tokenPath string, format vaultfile.Format) *DriveSyncer {
	return &DriveSyncer{
		FileName: DefaultDriveFileName,
		Format:   format,
		service: func(ctx context.Context) (*drive.Service, error) {
			b, err := os.ReadFile(credentialsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read credentials: %w", err)
			}

			// Parse Google OAuth2 config from JSON
			config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
			if err != nil {
				return nil, fmt.Errorf("failed to parse credentials: %w", err)
			}

			token, err := loadToken(tokenPath)
			if err != nil {
				return nil, err
			}

			srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
			if err != nil {
				return nil, fmt.Errorf("failed to create Drive service: %w", err)
			}
			return srv, nil
		},
	}
}

// NewDriveSyncerWithService uses an already configured Drive client.
func NewDriveSyncerWithService(srv *drive.Service, format vaultfile.Format) *DriveSyncer {
	return &DriveSyncer{
		FileName: DefaultDriveFileName,
		Format:   format,
		service: func(context.Context) (*drive.Service, error) {
			return srv, nil
		},
	}
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &token, nil
}

// findFile returns the Drive ID of the vault file, or "" when absent.
func (d *DriveSyncer) findFile(ctx context.Context, srv *drive.Service) (string, error) {
	name := strings.ReplaceAll(d.FileName, `'`, `\'`)
	r, err := srv.Files.List().
		Q(fmt.Sprintf("name='%s' and trashed=false", name)).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to query Drive: %w", err)
	}
	if len(r.Files) == 0 {
		return "", nil
	}
	return r.Files[0].Id, nil
}

// Push uploads the local vault to Google Drive
func (d *DriveSyncer) Push(ctx context.Context, path string) error {
	raw, err := readLocal(path, d.Format)
	if err != nil {
		return err
	}

	srv, err := d.service(ctx)
	if err != nil {
		return err
	}
	fileID, err := d.findFile(ctx, srv)
	if err != nil {
		return err
	}

	if fileID == "" {
		f := &drive.File{Name: d.FileName}
		if _, err := srv.Files.Create(f).Media(bytes.NewReader(raw)).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to upload vault: %w", err)
		}
	} else {
		if _, err := srv.Files.Update(fileID, nil).Media(bytes.NewReader(raw)).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to update vault: %w", err)
		}
	}

	log.Info().Str("file", d.FileName).Int("bytes", len(raw)).Msg("Vault pushed to Google Drive")
	return nil
}

// Pull downloads the remote vault from Google Drive
func (d *DriveSyncer) Pull(ctx context.Context, path string) error {
	srv, err := d.service(ctx)
	if err != nil {
		return err
	}
	fileID, err := d.findFile(ctx, srv)
	if err != nil {
		return err
	}
	if fileID == "" {
		return ErrNoRemote
	}

	resp, err := srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("failed to download vault: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return fmt.Errorf("failed to read downloaded vault: %w", err)
	}
	if len(raw) > maxDownload {
		return fmt.Errorf("remote vault exceeds %d bytes", maxDownload)
	}

	if err := install(path, raw, d.Format); err != nil {
		return err
	}

	log.Info().Str("file", d.FileName).Int("bytes", len(raw)).Msg("Vault pulled from Google Drive")
	return nil
}
