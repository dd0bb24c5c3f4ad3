package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// localStore keeps objects as plain files under one directory. Names are
// flattened to their base name so a crafted name cannot escape the root.
type localStore struct {
	dir     string
	baseURL string
}

func newLocalStore(dir, baseURL string) *localStore {
	return &localStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *localStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *localStore) Put(_ context.Context, name string, data []byte, _ string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(name), data, 0o644)
}

func (s *localStore) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *localStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *localStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *localStore) Remove(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *localStore) PublicURL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + "/" + filepath.Base(name)
}
