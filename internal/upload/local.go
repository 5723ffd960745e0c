package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LocalStore writes files into a directory served under /uploads.
type LocalStore struct {
	Dir    string
	Prefix string
}

func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &LocalStore{Dir: dir, Prefix: prefix}, nil
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	name := s.Prefix + uuid.NewString() + imageExt(originalName)
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrap(err, "write upload file")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "close upload file")
	}
	return name, nil
}

func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove upload file")
	}
	return nil
}
