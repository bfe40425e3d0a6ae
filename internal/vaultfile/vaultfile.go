package vaultfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/illarion/passvault/internal/crypto"
)

const (
	Magic   uint32 = 0x53504D56
	Version byte   = 1

	FilePerm = 0600

	// MaxSaltSize and MaxCiphertextSize bound the length prefixes so a
	// corrupted header cannot trigger huge allocations.
	MaxSaltSize       = 1024
	MaxCiphertextSize = 256 << 20
)

var (
	ErrMalformed = errors.New("malformed vault file")
)

// Format identifies the container: magic number and the only supported
// version.
type Format struct {
	Magic   uint32
	Version byte
}

// DefaultFormat returns the format written by this version of passvault.
func DefaultFormat() Format {
	return Format{Magic: Magic, Version: Version}
}

// Data is one encrypted snapshot of the entry list.
type Data struct {
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

func (d Data) validate() error {
	if len(d.Salt) == 0 || len(d.Salt) > MaxSaltSize {
		return fmt.Errorf("invalid salt length %d", len(d.Salt))
	}
	if len(d.Nonce) != crypto.NonceSize {
		return fmt.Errorf("invalid nonce length %d", len(d.Nonce))
	}
	if len(d.Tag) != crypto.TagSize {
		return fmt.Errorf("invalid tag length %d", len(d.Tag))
	}
	if len(d.Ciphertext) > MaxCiphertextSize {
		return fmt.Errorf("ciphertext too large: %d bytes", len(d.Ciphertext))
	}
	return nil
}

// Encode writes d to w in the container format.
func (f Format) Encode(w io.Writer, d Data) error {
	if err := d.validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	var hdr [5]byte
	binary.LittleEndian.PutUint32(hdr[:4], f.Magic)
	hdr[4] = f.Version
	bw.Write(hdr[:])

	binary.Write(bw, binary.LittleEndian, int32(len(d.Salt)))
	bw.Write(d.Salt)
	bw.Write(d.Nonce)
	binary.Write(bw, binary.LittleEndian, int32(len(d.Ciphertext)))
	bw.Write(d.Ciphertext)
	bw.Write(d.Tag)

	// bufio.Writer keeps the first error; Flush reports it
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write vault data: %w", err)
	}
	return nil
}

// Marshal returns the encoded container.
func (f Format) Marshal(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one container from r. Magic and version are checked first.
// Every failure wraps ErrMalformed.
func (f Format) Decode(r io.Reader) (Data, error) {
	br := bufio.NewReader(r)

	var hdr [5]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return Data{}, malformed("truncated header", err)
	}
	if binary.LittleEndian.Uint32(hdr[:4]) != f.Magic {
		return Data{}, malformed("invalid vault file format", nil)
	}
	if hdr[4] != f.Version {
		return Data{}, malformed(fmt.Sprintf("unsupported vault version %d", hdr[4]), nil)
	}

	salt, err := readPrefixed(br, MaxSaltSize, "salt")
	if err != nil {
		return Data{}, err
	}
	if len(salt) == 0 {
		return Data{}, malformed("empty salt", nil)
	}

	nonce := make([]byte, crypto.NonceSize)
	if _, err := io.ReadFull(br, nonce); err != nil {
		return Data{}, malformed("truncated nonce", err)
	}

	ciphertext, err := readPrefixed(br, MaxCiphertextSize, "ciphertext")
	if err != nil {
		return Data{}, err
	}

	tag := make([]byte, crypto.TagSize)
	if _, err := io.ReadFull(br, tag); err != nil {
		return Data{}, malformed("truncated tag", err)
	}

	if _, err := br.ReadByte(); err != io.EOF {
		return Data{}, malformed("trailing data after tag", nil)
	}

	return Data{Salt: salt, Nonce: nonce, Ciphertext: ciphertext, Tag: tag}, nil
}

// Unmarshal decodes a container held in memory.
func (f Format) Unmarshal(raw []byte) (Data, error) {
	return f.Decode(bytes.NewReader(raw))
}

// Read loads and validates the vault file at path.
func (f Format) Read(path string) (Data, error) {
	file, err := os.Open(path)
	if err != nil {
		return Data{}, malformed("cannot open vault file", err)
	}
	defer file.Close()

	return f.Decode(file)
}

// Write atomically replaces the vault file at path with d.
func (f Format) Write(path string, d Data) error {
	raw, err := f.Marshal(d)
	if err != nil {
		return err
	}
	return WriteAtomic(path, raw, FilePerm)
}

// Read loads a vault file using DefaultFormat.
func Read(path string) (Data, error) {
	return DefaultFormat().Read(path)
}

// Write stores a vault file using DefaultFormat.
func Write(path string, d Data) error {
	return DefaultFormat().Write(path, d)
}

func readPrefixed(r io.Reader, max int, field string) ([]byte, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, malformed("truncated "+field+" length", err)
	}
	if n < 0 || int(n) > max {
		return nil, malformed(fmt.Sprintf("invalid %s length %d", field, n), nil)
	}
	// Grow with the data actually read, not the declared length
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		return nil, malformed("truncated "+field, err)
	}
	return buf.Bytes(), nil
}

func malformed(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrMalformed, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrMalformed, msg, cause)
}

// WriteAtomic writes data to a temporary file in the target directory and
// renames it over path.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".passvault-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
