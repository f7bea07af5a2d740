package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

// MediaScheme prefixes URIs of attachments held by a MediaStore.
const MediaScheme = "media:"

// MediaStore keeps copies of attached files under the notes home so that an
// attachment outlives the file it was imported from.
type MediaStore struct {
	d        *diskv.Diskv
	basePath string
}

// NewMediaStore returns a MediaStore rooted at basePath.
func NewMediaStore(basePath string) *MediaStore {
	return &MediaStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: blobKeyToPath,
		InverseTransform:  blobPathToKey,
		CacheSizeMax:      4 * 1024 * 1024, // 4MB
	}), basePath: basePath}
}

// Import copies r into the store. The returned URI keeps the extension of name
// so viewers can pick a handler.
func (m *MediaStore) Import(r io.Reader, name string) (string, error) {
	key := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	if err := m.d.WriteStream(key, r, true); err != nil {
		return "", fmt.Errorf("store: import media %q: %w", name, err)
	}
	return MediaScheme + key, nil
}

// ImportFile copies the file at path into the store.
func (m *MediaStore) ImportFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("store: import media: %w", err)
	}
	defer f.Close()
	return m.Import(f, filepath.Base(path))
}

// Managed reports whether uri points into a MediaStore.
func Managed(uri string) bool {
	return strings.HasPrefix(uri, MediaScheme)
}

func keyFor(uri string) (string, error) {
	if !Managed(uri) {
		return "", fmt.Errorf("store: %q is not a managed media uri", uri)
	}
	key := strings.TrimPrefix(uri, MediaScheme)
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("store: invalid media uri %q", uri)
	}
	return key, nil
}

// Open streams the attachment content.
func (m *MediaStore) Open(uri string) (io.ReadCloser, error) {
	key, err := keyFor(uri)
	if err != nil {
		return nil, err
	}
	rc, err := m.d.ReadStream(key, false)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: media %s", ErrNotFound, uri)
		}
		return nil, err
	}
	return rc, nil
}

// Path resolves uri to the file on disk. Unmanaged URIs are returned as is.
func (m *MediaStore) Path(uri string) string {
	key, err := keyFor(uri)
	if err != nil {
		return uri
	}
	pk := blobKeyToPath(key)
	return filepath.Join(append([]string{m.basePath}, append(pk.Path, pk.FileName)...)...)
}

// Remove erases a managed attachment. Missing blobs and unmanaged URIs are
// ignored.
func (m *MediaStore) Remove(uri string) error {
	key, err := keyFor(uri)
	if err != nil {
		return nil
	}
	if !m.d.Has(key) {
		return nil
	}
	if err := m.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: remove media %s: %w", uri, err)
	}
	return nil
}

// URIs lists every managed attachment.
func (m *MediaStore) URIs(ctx context.Context) []string {
	uris := make([]string, 0)
	for key := range m.d.Keys(ctx.Done()) {
		uris = append(uris, MediaScheme+key)
	}
	return uris
}

// blobKeyToPath fans keys out over two directory levels taken from the uuid.
func blobKeyToPath(key string) *diskv.PathKey {
	if len(key) < 4 {
		return &diskv.PathKey{Path: []string{}, FileName: key}
	}
	return &diskv.PathKey{
		Path:     []string{key[0:2], key[2:4]},
		FileName: key,
	}
}

func blobPathToKey(pk *diskv.PathKey) string {
	return pk.FileName
}
