// Package docstore archives submitted workbooks.
package docstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/blackrosevn/Dev02-Reporting/config"
)

// Store uploads a file and returns a URL where it can be retrieved.
type Store interface {
	Upload(ctx context.Context, data []byte, destPath, fileName string) (string, error)
}

// Reader is implemented by stores whose files are handed back through the
// API rather than linked to directly.
type Reader interface {
	Read(ctx context.Context, fileURL string) ([]byte, error)
}

// New selects the store configured by cfg.Driver.
func New(cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStore(cfg.LocalDir, cfg.BaseURL), nil
	case "sharepoint":
		return NewSharePointStore(&cfg.SharePoint), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// cleanPath normalizes destPath to a relative, slash-separated path with no
// parent references.
func cleanPath(destPath string) (string, error) {
	p := path.Clean("/" + strings.ReplaceAll(destPath, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid destination path %q", destPath)
		}
	}
	return p, nil
}

func validFileName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}
