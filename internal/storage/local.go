package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrOutsideStore = errors.New("path is outside the upload directory")

// LocalStore keeps uploads on the local disk under baseDir/<kind>/ with
// randomized filenames, and serves them under baseURL/uploads/.
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	for _, kind := range []Kind{KindMusic, KindImage} {
		if err := os.MkdirAll(filepath.Join(baseDir, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("creating upload dir: %w", err)
		}
	}
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Save(_ context.Context, r io.Reader, kind Kind, originalName string) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !AllowedExt(kind, ext) {
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	name := hex.EncodeToString(buf) + ext

	dst := filepath.Join(s.baseDir, string(kind), name)
	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &StoredFile{
		URL:  fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, kind, name),
		Size: size,
	}, nil
}

// Remove deletes the file a previously returned URL points at. Unknown or
// already-deleted files are not an error.
func (s *LocalStore) Remove(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/uploads/")
	if !ok {
		return ErrOutsideStore
	}

	rel = path.Clean("/" + rel)[1:] // collapse any ../ segments
	dst := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if !strings.HasPrefix(dst, filepath.Clean(s.baseDir)+string(os.PathSeparator)) {
		return ErrOutsideStore
	}

	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Dir exposes the root for serving static files.
func (s *LocalStore) Dir() string {
	return s.baseDir
}
