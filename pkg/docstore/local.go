package docstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes files under a directory. The URLs it returns are
// locators under baseURL; the files are only read back through Read.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore builds a filesystem store.
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload implements Store.
func (s *LocalStore) Upload(ctx context.Context, data []byte, destPath, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := cleanPath(destPath)
	if err != nil {
		return "", err
	}
	if err := validFileName(fileName); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", fileName, err)
	}

	segs := []string{s.baseURL}
	if rel != "" {
		for _, seg := range strings.Split(rel, "/") {
			segs = append(segs, url.PathEscape(seg))
		}
	}
	segs = append(segs, url.PathEscape(fileName))
	return strings.Join(segs, "/"), nil
}

// Read implements Reader. URLs outside baseURL, or naming a missing file,
// give an error wrapping os.ErrNotExist.
func (s *LocalStore) Read(ctx context.Context, fileURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rest, ok := strings.CutPrefix(fileURL, s.baseURL+"/")
	if !ok {
		return nil, fmt.Errorf("file url %q is outside the store: %w", fileURL, os.ErrNotExist)
	}

	segs := strings.Split(rest, "/")
	for i, seg := range segs {
		unescaped, err := url.PathUnescape(seg)
		if err != nil {
			return nil, fmt.Errorf("file url %q: %w", fileURL, err)
		}
		segs[i] = unescaped
	}
	name := segs[len(segs)-1]
	if err := validFileName(name); err != nil {
		return nil, err
	}
	rel, err := cleanPath(strings.Join(segs[:len(segs)-1], "/"))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel), name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
