package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/illarion/passvault/internal/vaultfile"
)

// maxDownload bounds the response body read on Pull.
const maxDownload = vaultfile.MaxCiphertextSize + vaultfile.MaxSaltSize + 64

// HTTPSyncer stores the vault as a single resource: PUT uploads it and
// GET downloads it.
type HTTPSyncer struct {
	URL    string
	Client *http.Client
	Format vaultfile.Format
}

// NewHTTPSyncer returns a syncer for url with a default client.
func NewHTTPSyncer(url string, format vaultfile.Format) *HTTPSyncer {
	return &HTTPSyncer{
		URL:    url,
		Client: &http.Client{Timeout: time.Minute},
		Format: format,
	}
}

// Push uploads the local vault
func (h *HTTPSyncer) Push(ctx context.Context, path string) error {
	if h.URL == "" {
		return ErrNotConfigured
	}
	raw, err := readLocal(path, h.Format)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.URL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload vault: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to upload vault: server returned %s", resp.Status)
	}

	log.Info().Str("url", h.URL).Int("bytes", len(raw)).Msg("Vault pushed")
	return nil
}

// Pull downloads the remote vault and replaces the local one
func (h *HTTPSyncer) Pull(ctx context.Context, path string) error {
	if h.URL == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return err
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download vault: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNoRemote
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("failed to download vault: server returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return fmt.Errorf("failed to read downloaded vault: %w", err)
	}
	if len(raw) > maxDownload {
		return fmt.Errorf("remote vault exceeds %d bytes", maxDownload)
	}

	if err := install(path, raw, h.Format); err != nil {
		return err
	}

	log.Info().Str("url", h.URL).Int("bytes", len(raw)).Msg("Vault pulled")
	return nil
}
