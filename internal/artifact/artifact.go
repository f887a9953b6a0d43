// Package artifact downloads model files from a remote blob store into local storage once.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// ErrNoArtifactID means the local file is missing and there is nothing to fetch it by.
	ErrNoArtifactID  = errors.New("artifact missing locally and no artifact id configured")
	ErrEmptyArtifact = errors.New("remote artifact is empty")
)

// Fetcher opens the remote artifact addressed by id.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (io.ReadCloser, error)
}

// Acquirer materialises remote artifacts at local paths.
type Acquirer struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewAcquirer(fetcher Fetcher, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{fetcher: fetcher, logger: logger}
}

// Ensure makes sure dest exists, fetching id into it when it does not.
// An existing file at dest short-circuits the fetch. It reports whether a fetch happened.
func (a *Acquirer) Ensure(ctx context.Context, id, dest string) (bool, error) {
	if info, err := os.Stat(dest); err == nil {
		if info.IsDir() {
			return false, fmt.Errorf("artifact path %s is a directory", dest)
		}
		a.logger.Debug("artifact already present", "path", dest)
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat artifact %s failed: %w", dest, err)
	}

	if id == "" {
		return false, fmt.Errorf("%w: %s", ErrNoArtifactID, dest)
	}

	a.logger.Info("fetching artifact", "id", id, "path", dest)
	if err := a.download(ctx, id, dest); err != nil {
		return false, err
	}
	a.logger.Info("artifact stored", "id", id, "path", dest)
	return true, nil
}

// download streams the artifact into a temp file next to dest and renames it into place,
// so an interrupted fetch never leaves a partial file at dest.
func (a *Acquirer) download(ctx context.Context, id, dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir failed: %w", err)
	}

	body, err := a.fetcher.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch artifact %s failed: %w", id, err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp artifact failed: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write artifact %s failed: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyArtifact, id)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("move artifact into place failed: %w", err)
	}
	return nil
}
