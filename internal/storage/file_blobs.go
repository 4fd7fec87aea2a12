package storage

import (
	"os"
	"path/filepath"
)

// FileBlobStore keeps blobs as files under a data directory.
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore creates the data directory if needed.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBlobStore{dir: dir}, nil
}

func (f *FileBlobStore) Load(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.dir, name))
}

// Save writes the whole blob through a temp file and rename, so a crash
// mid-write cannot leave a torn file behind.
func (f *FileBlobStore) Save(name string, data []byte) error {
	path := filepath.Join(f.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
