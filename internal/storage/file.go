package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/partsbin/internal/core"
)

// tempFilePrefix names the scratch files used for atomic writes.
const tempFilePrefix = ".partsbin-tmp-"

// FileStore keeps the inventory as a canonical JSON array in one file.
type FileStore struct {
	path string
}

// NewFileStore returns a store at path, creating its directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file store: create directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Driver implements Backend.
func (s *FileStore) Driver() string { return DriverFile }

// Close implements Backend.
func (s *FileStore) Close() error { return nil }

// Path returns the file the store writes to.
func (s *FileStore) Path() string { return s.path }

// Load reads the saved array. The file goes through the import normalizer,
// so hand-edited files with aliased keys or text quantities still load.
func (s *FileStore) Load(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	records, err := core.NormalizeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return records, nil
}

// Save writes records atomically.
func (s *FileStore) Save(ctx context.Context, records []core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vocab, _ := core.GetVocabulary(core.CanonicalVocabulary)
	data, err := core.EncodeJSON(records, vocab)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	return writeFileAtomic(s.path, data, 0o644)
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over filename, so readers never see a partial file.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // no-op after a successful rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}
