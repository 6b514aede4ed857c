package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	apperrors "storefront/internal/errors"
)

// Local keeps payment-slip artifacts as files under one directory of fs.
type Local struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

func NewLocal(fsys afero.Fs, dir string) (*Local, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &Local{fs: fsys, dir: dir, now: time.Now}, nil
}

// Store writes r under a collision-resistant locator derived from the
// suggested name: <unix nanos>_<random>_<sanitized name>.
func (s *Local) Store(ctx context.Context, r io.Reader, suggestedName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	locator := fmt.Sprintf("%d_%s_%s", s.now().UnixNano(), uuid.NewString()[:8], sanitize(suggestedName))
	if err := afero.WriteReader(s.fs, s.path(locator), r); err != nil {
		_ = s.fs.Remove(s.path(locator))
		return "", fmt.Errorf("writing artifact %s: %w", locator, err)
	}
	return locator, nil
}

func (s *Local) Retrieve(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validLocator(locator) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("artifact %q not found", locator))
	}

	data, err := afero.ReadFile(s.fs, s.path(locator))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("artifact %q not found", locator))
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", locator, err)
	}
	return data, nil
}

// Delete removes an artifact. A missing artifact is not an error.
func (s *Local) Delete(ctx context.Context, locator string) error {
	if !validLocator(locator) {
		return nil
	}
	err := s.fs.Remove(s.path(locator))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing artifact %s: %w", locator, err)
	}
	return nil
}

func (s *Local) path(locator string) string {
	return filepath.Join(s.dir, locator)
}

func validLocator(locator string) bool {
	return locator != "" && locator != "." && locator != ".." && !strings.ContainsAny(locator, `/\`)
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// ContentType guesses the media type of a stored artifact from its extension.
func ContentType(locator string) string {
	switch strings.ToLower(filepath.Ext(locator)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
