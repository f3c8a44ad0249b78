package uploads

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/coexhq/coex-backend/pkg/config"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
)

// Storage saves uploaded images and returns the relative path they are
// served from.
type Storage interface {
	SaveImage(ctx context.Context, originalName string, r io.Reader) (string, error)
}

type diskStorage struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewDiskStorage writes uploads under cfg.Dir, creating it if needed.
func NewDiskStorage(cfg config.UploadsConfig) (Storage, error) {
	if cfg.Dir == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "uploads directory required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create uploads directory")
	}
	return &diskStorage{dir: cfg.Dir, maxBytes: cfg.MaxUploadBytes(), now: time.Now}, nil
}

// SaveImage sniffs the payload's real content type and rejects anything
// that is not an image, regardless of the declared filename or header.
func (d *diskStorage) SaveImage(_ context.Context, originalName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload")
	}
	if int64(len(data)) > d.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %dMB upload limit", d.maxBytes/(1024*1024)))
	}
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is empty")
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "only image files are allowed")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = detected.Extension()
	}
	name := fmt.Sprintf("%d-%09d%s", d.now().UnixMilli(), rand.Intn(1_000_000_000), ext)

	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload")
	}
	return filepath.ToSlash(filepath.Join(d.dir, name)), nil
}
