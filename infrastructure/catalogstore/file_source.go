package catalogstore

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"time"

	"github.com/personakit/go-persona/internal/application"
	"github.com/personakit/go-persona/internal/domain"
	"github.com/personakit/go-persona/internal/ports"
)

// defaultPollInterval is how often Watch re-reads the file when no
// interval is configured.
const defaultPollInterval = 10 * time.Second

// FileSource loads catalogs from a YAML file on disk and detects
// changes by polling, making it suitable for catalogs managed through
// ordinary config deployment.
type FileSource struct {
	path         string
	loader       *application.CatalogLoader
	pollInterval time.Duration
}

// FileSourceOption configures a FileSource.
type FileSourceOption func(*FileSource)

// WithPollInterval sets how often Watch checks the file for changes.
func WithPollInterval(interval time.Duration) FileSourceOption {
	return func(fs *FileSource) { fs.pollInterval = interval }
}

// NewFileSource creates a file-backed catalog source for the given
// YAML path.
func NewFileSource(path string, opts ...FileSourceOption) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("path must not be empty")
	}

	loader, err := application.NewCatalogLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to create loader: %w", err)
	}

	fs := &FileSource{
		path:         path,
		loader:       loader,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs, nil
}

// Load reads and validates the catalog file.
func (fs *FileSource) Load(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.loader.LoadFromFile(fs.path)
}

// Watch polls the file and invokes the callback with a freshly loaded
// catalog whenever its content hash changes. Invalid intermediate
// states, such as a half-written file during deployment, are skipped
// rather than propagated; the previous catalog stays active.
func (fs *FileSource) Watch(ctx context.Context, callback func(*domain.Catalog)) (func(), error) {
	initial, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	lastHash := sha256.Sum256(initial)

	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(fs.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
			}

			data, err := os.ReadFile(fs.path)
			if err != nil {
				continue
			}
			hash := sha256.Sum256(data)
			if hash == lastHash {
				continue
			}

			catalog, err := fs.loader.LoadFromFile(fs.path)
			if err != nil {
				// Do not advance the hash; retry until the file is valid.
				continue
			}

			lastHash = hash
			callback(catalog)
		}
	}()

	return cancel, nil
}

// Compile-time verification that FileSource implements CatalogSource.
var _ ports.CatalogSource = (*FileSource)(nil)
