package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store keeps assets on the local filesystem below a root directory.
type Store struct {
	root    string
	baseURL string
}

var _ storage.Store = (*Store)(nil)

func New(cfg config.StorageConfig) (*Store, error) {
	if cfg.LocalRoot == "" {
		return nil, errors.New("local storage root is required")
	}
	root, err := filepath.Abs(cfg.LocalRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: root, baseURL: cfg.PublicBaseURL}, nil
}

// Root returns the absolute directory backing the store.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) abs(relPath string) (string, string, error) {
	rel, err := storage.CleanRel(relPath)
	if err != nil {
		return "", "", err
	}
	return rel, filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func (s *Store) Save(ctx context.Context, r io.Reader, relPath, _ string) (storage.Object, error) {
	rel, target, err := s.abs(relPath)
	if err != nil {
		return storage.Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return storage.Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return storage.Object{}, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return storage.Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return storage.Object{}, fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return storage.Object{}, fmt.Errorf("close %s: %w", rel, err)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return storage.Object{}, fmt.Errorf("chmod %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return storage.Object{}, fmt.Errorf("finalize %s: %w", rel, err)
	}

	return storage.Object{Path: rel, URL: s.URL(rel)}, nil
}

func (s *Store) Delete(_ context.Context, relPath string) error {
	rel, target, err := s.abs(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, rel)
		}
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

func (s *Store) Move(_ context.Context, from, to string) error {
	fromRel, src, err := s.abs(from)
	if err != nil {
		return err
	}
	_, dst, err := s.abs(to)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, fromRel)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.Rename(src, dst)
}

func (s *Store) List(_ context.Context, dir string) ([]string, error) {
	_, target, err := s.abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Name()[0] == '.' {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) RemoveDir(_ context.Context, dir string) error {
	_, target, err := s.abs(dir)
	if err != nil {
		return err
	}
	return os.RemoveAll(target)
}

func (s *Store) URL(relPath string) string {
	return storage.JoinURL(s.baseURL, relPath)
}

func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", s.root)
	}
	return nil
}
